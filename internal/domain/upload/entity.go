package upload

// File describes a stored upload. It is returned to the caller and never
// persisted; the bytes live in the storage backend.
type File struct {
	Filename string `json:"filename"`
	Mimetype string `json:"mimetype"`
	Encoding string `json:"encoding"`
	URL      string `json:"url"`
}
