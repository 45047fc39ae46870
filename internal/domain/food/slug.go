package food

import "strings"

// Slugify lower-cases name and replaces every space with a hyphen.
// "Spicy Chicken Wings" becomes "spicy-chicken-wings".
func Slugify(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, " ", "-"))
}
