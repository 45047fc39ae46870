package food

import (
	"context"
	"errors"
	"log/slog"

	"foodcatalog/internal/logging"
	"foodcatalog/internal/pkg/validator"
)

// MutationService creates, re-prices and deletes catalog items. Writes run to
// completion even if the caller's context is canceled; request values such as
// the request ID are kept.
type MutationService struct {
	store Store
}

func NewMutationService(store Store) *MutationService {
	return &MutationService{store: store}
}

// Create validates req, derives the slug and inserts the item. Rule and
// uniqueness failures come back as *ValidationError carrying req.
func (s *MutationService) Create(ctx context.Context, req CreateFoodRequest) (*FoodItem, error) {
	ctx = context.WithoutCancel(ctx)
	if req.Description != nil && *req.Description == "" {
		req.Description = nil
	}
	if req.Image != nil && *req.Image == "" {
		req.Image = nil
	}

	if fields := validator.Validate(&req); fields != nil {
		return nil, &ValidationError{Message: "invalid food item", Fields: fields, Input: req}
	}

	item := &FoodItem{
		Name:          req.Name,
		Type:          req.Type,
		Price:         req.Price,
		Description:   req.Description,
		Slug:          Slugify(req.Name),
		EstimatedTime: req.EstimatedTime,
		Image:         req.Image,
		Stars:         req.Stars,
	}

	if err := s.store.Insert(ctx, item); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			// a repeated name also repeats the slug; report the name
			if verr.Fields["slug"] == "unique" {
				if existing, ferr := s.store.FindOne(ctx, Query{Name: req.Name}); ferr == nil && existing != nil {
					verr = duplicateError("foods.name")
				}
			}
			verr.Input = req
			return nil, verr
		}
		return nil, err
	}

	logging.FromContext(ctx).Info("food created", "slug", item.Slug, "id", item.ID)
	return item, nil
}

// EditPrice sets the price of the item called name. It returns (nil, nil)
// when there is no such item.
func (s *MutationService) EditPrice(ctx context.Context, name string, price int) (*FoodItem, error) {
	ctx = context.WithoutCancel(ctx)
	if name == "" {
		return nil, nil
	}
	current, err := s.store.FindOne(ctx, Query{Name: name})
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, nil
	}

	in := EditPriceRequest{Name: name, Price: price}
	if fields := validator.Validate(&priceUpdate{Price: price}); fields != nil {
		return nil, &ValidationError{Message: "invalid price", Fields: fields, Input: in}
	}

	updated, err := s.store.UpdatePrice(ctx, current.ID, price)
	if errors.Is(err, ErrNotFound) {
		// removed between lookup and update
		return nil, nil
	}
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			verr.Input = in
		}
		return nil, err
	}

	logging.FromContext(ctx).Info("food price changed",
		slog.String("slug", updated.Slug),
		slog.Int("from", current.Price),
		slog.Int("to", updated.Price),
	)
	return updated, nil
}

// DeleteBySlug removes the item with slug and returns it. A missing item is
// reported as ErrNotFound.
func (s *MutationService) DeleteBySlug(ctx context.Context, slug string) (*FoodItem, error) {
	ctx = context.WithoutCancel(ctx)
	if slug == "" {
		return nil, ErrNotFound
	}
	current, err := s.store.FindOne(ctx, Query{Slug: slug})
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, ErrNotFound
	}

	if err := s.store.Delete(ctx, current.ID); err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Info("food deleted", "slug", slug, "id", current.ID)
	return current, nil
}
