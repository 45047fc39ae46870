package food

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"foodcatalog/internal/database"
)

func newTestStore(t *testing.T) *GormStore {
	t.Helper()

	db, err := database.Connect(":memory:")
	require.NoError(t, err, "failed to open sqlite")
	t.Cleanup(func() { _ = database.Close(db) })

	store, err := NewGormStore(db)
	require.NoError(t, err, "failed to migrate foods")
	return store
}

func strPtr(s string) *string { return &s }
func floatPtr(f float64) *float64 { return &f }

func validRequest(name, foodType string) CreateFoodRequest {
	return CreateFoodRequest{
		Name:          name,
		Type:          foodType,
		Price:         12,
		Description:   strPtr("Freshly made every day"),
		EstimatedTime: 15,
		Image:         strPtr("food.png"),
		Stars:         floatPtr(4.5),
	}
}

func seed(t *testing.T, svc *MutationService, reqs ...CreateFoodRequest) []*FoodItem {
	t.Helper()
	out := make([]*FoodItem, 0, len(reqs))
	for _, req := range reqs {
		item, err := svc.Create(context.Background(), req)
		require.NoError(t, err, "seed %q", req.Name)
		out = append(out, item)
	}
	return out
}

// MockStore is a testify mock of Store.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) Find(ctx context.Context, q Query) ([]FoodItem, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]FoodItem), args.Error(1)
}

func (m *MockStore) FindOne(ctx context.Context, q Query) (*FoodItem, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*FoodItem), args.Error(1)
}

func (m *MockStore) DistinctTypes(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockStore) Insert(ctx context.Context, item *FoodItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockStore) UpdatePrice(ctx context.Context, id string, price int) (*FoodItem, error) {
	args := m.Called(ctx, id, price)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*FoodItem), args.Error(1)
}

func (m *MockStore) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
