package food

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// CatalogService answers read-only catalog queries.
type CatalogService struct {
	store Store
}

func NewCatalogService(store Store) *CatalogService {
	return &CatalogService{store: store}
}

func (s *CatalogService) Count(ctx context.Context) (int64, error) {
	return s.store.Count(ctx)
}

// List returns every item, or only those with (YES) or without (NO) a
// description.
func (s *CatalogService) List(ctx context.Context, filter *ListFilter) ([]FoodItem, error) {
	var q Query
	if filter != nil && filter.HasDescription != "" {
		switch filter.HasDescription {
		case Yes:
			has := true
			q.HasDescription = &has
		case No:
			has := false
			q.HasDescription = &has
		default:
			verr := newValidationError("hasDescription must be YES or NO",
				map[string]string{"hasDescription": "oneof"})
			verr.Input = filter
			return nil, verr
		}
	}
	return s.store.Find(ctx, q)
}

// GetBySlug returns (nil, nil) when no item has that slug.
func (s *CatalogService) GetBySlug(ctx context.Context, slug string) (*FoodItem, error) {
	if slug == "" {
		return nil, nil
	}
	return s.store.FindOne(ctx, Query{Slug: slug})
}

func (s *CatalogService) ListByType(ctx context.Context, foodType string) ([]FoodItem, error) {
	if foodType == "" {
		return []FoodItem{}, nil
	}
	return s.store.Find(ctx, Query{Type: foodType})
}

func (s *CatalogService) ListBySlugs(ctx context.Context, slugs []string) ([]FoodItem, error) {
	if len(slugs) == 0 {
		return []FoodItem{}, nil
	}
	return s.store.Find(ctx, Query{Slugs: slugs})
}

// ListDistinctTypes returns each type once, sorted.
func (s *CatalogService) ListDistinctTypes(ctx context.Context) ([]string, error) {
	types, err := s.store.DistinctTypes(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(types))
	out := make([]string, 0, len(types))
	for _, t := range types {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	return out, nil
}

// Search matches term against names case-insensitively. Any non-empty term is
// a valid substring, including whitespace. The filter runs here
// rather than in the store so every backend folds case the same way.
func (s *CatalogService) Search(ctx context.Context, term string) ([]FoodItem, error) {
	if term == "" {
		return nil, newValidationError("search term is required", map[string]string{"search": "required"})
	}

	all, err := s.store.Find(ctx, Query{})
	if err != nil {
		return nil, fmt.Errorf("search foods: %w", err)
	}

	needle := strings.ToLower(term)
	matches := make([]FoodItem, 0)
	for _, item := range all {
		if strings.Contains(strings.ToLower(item.Name), needle) {
			matches = append(matches, item)
		}
	}
	return matches, nil
}
