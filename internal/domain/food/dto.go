package food

// CreateFoodRequest is the input of MutationService.Create.
type CreateFoodRequest struct {
	Name          string   `json:"name" validate:"required,min=3"`
	Type          string   `json:"type" validate:"required,min=3"`
	Price         int      `json:"price" validate:"required,min=2"`
	Description   *string  `json:"description,omitempty" validate:"omitempty,min=5"`
	EstimatedTime int      `json:"estimatedTime" validate:"required,min=1"`
	Image         *string  `json:"image,omitempty"`
	Stars         *float64 `json:"stars,omitempty" validate:"omitempty,gte=0,lte=5"`
}

// EditPriceRequest is the body of PATCH /foods/price.
type EditPriceRequest struct {
	Name  string `json:"name"`
	Price int    `json:"price"`
}

type priceUpdate struct {
	Price int `json:"price" validate:"min=2"`
}

// validationDetails is the error detail of a 422: the failed rule per field
// and the values that were rejected.
type validationDetails struct {
	Fields      map[string]string `json:"fields"`
	InvalidArgs any               `json:"invalidArgs,omitempty"`
}

type countResponse struct {
	Count int64 `json:"count"`
}
