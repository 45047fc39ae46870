package food

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// GormStore keeps foods in a SQL table through gorm (SQLite or PostgreSQL).
type GormStore struct {
	db *gorm.DB
}

type foodModel struct {
	ID            string    `gorm:"column:id;primaryKey;size:36"`
	Name          string    `gorm:"column:name;not null;uniqueIndex:idx_foods_name"`
	Type          string    `gorm:"column:type;not null;index:idx_foods_type"`
	Price         int       `gorm:"column:price;not null;check:chk_foods_price,price >= 2"`
	Description   *string   `gorm:"column:description"`
	Slug          string    `gorm:"column:slug;not null;uniqueIndex:idx_foods_slug"`
	EstimatedTime int       `gorm:"column:estimated_time;not null;check:chk_foods_estimated_time,estimated_time >= 1"`
	Image         *string   `gorm:"column:image"`
	Stars         *float64  `gorm:"column:stars;check:chk_foods_stars,stars IS NULL OR (stars >= 0 AND stars <= 5)"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (foodModel) TableName() string { return "foods" }

// check constraint name -> json field
var checkConstraints = map[string]string{
	"chk_foods_price":          "price",
	"chk_foods_estimated_time": "estimatedTime",
	"chk_foods_stars":          "stars",
}

// NewGormStore creates the foods table and its indexes if they are missing.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&foodModel{}); err != nil {
		return nil, fmt.Errorf("migrate foods: %w", err)
	}
	return &GormStore{db: db}, nil
}

func toDomainFood(m foodModel) FoodItem {
	return FoodItem{
		ID:            m.ID,
		Name:          m.Name,
		Type:          m.Type,
		Price:         m.Price,
		Description:   m.Description,
		Slug:          m.Slug,
		EstimatedTime: m.EstimatedTime,
		Image:         m.Image,
		Stars:         m.Stars,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func toFoodModel(f *FoodItem) foodModel {
	return foodModel{
		ID:            f.ID,
		Name:          f.Name,
		Type:          f.Type,
		Price:         f.Price,
		Description:   f.Description,
		Slug:          f.Slug,
		EstimatedTime: f.EstimatedTime,
		Image:         f.Image,
		Stars:         f.Stars,
		CreatedAt:     f.CreatedAt,
		UpdatedAt:     f.UpdatedAt,
	}
}

func (s *GormStore) scoped(ctx context.Context, q Query) *gorm.DB {
	tx := s.db.WithContext(ctx).Model(&foodModel{})
	if q.Name != "" {
		tx = tx.Where("name = ?", q.Name)
	}
	if q.Slug != "" {
		tx = tx.Where("slug = ?", q.Slug)
	}
	if q.Type != "" {
		tx = tx.Where("type = ?", q.Type)
	}
	if q.Slugs != nil {
		tx = tx.Where("slug IN ?", q.Slugs)
	}
	if q.HasDescription != nil {
		if *q.HasDescription {
			tx = tx.Where("description IS NOT NULL AND description <> ''")
		} else {
			tx = tx.Where("description IS NULL OR description = ''")
		}
	}
	return tx
}

func (s *GormStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&foodModel{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count foods: %w", err)
	}
	return n, nil
}

func (s *GormStore) Find(ctx context.Context, q Query) ([]FoodItem, error) {
	var models []foodModel
	if err := s.scoped(ctx, q).Order("created_at ASC").Order("id ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("find foods: %w", err)
	}
	items := make([]FoodItem, 0, len(models))
	for _, m := range models {
		items = append(items, toDomainFood(m))
	}
	return items, nil
}

func (s *GormStore) FindOne(ctx context.Context, q Query) (*FoodItem, error) {
	var m foodModel
	err := s.scoped(ctx, q).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find food: %w", err)
	}
	item := toDomainFood(m)
	return &item, nil
}

func (s *GormStore) DistinctTypes(ctx context.Context) ([]string, error) {
	var types []string
	if err := s.db.WithContext(ctx).Model(&foodModel{}).Distinct().Pluck("type", &types).Error; err != nil {
		return nil, fmt.Errorf("distinct food types: %w", err)
	}
	return types, nil
}

func (s *GormStore) Insert(ctx context.Context, item *FoodItem) error {
	m := toFoodModel(item)
	m.ID = uuid.NewString()
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return translateGormError(err)
	}
	*item = toDomainFood(m)
	return nil
}

func (s *GormStore) UpdatePrice(ctx context.Context, id string, price int) (*FoodItem, error) {
	res := s.db.WithContext(ctx).Model(&foodModel{}).
		Where("id = ?", id).
		Updates(map[string]any{"price": price, "updated_at": time.Now()})
	if res.Error != nil {
		return nil, translateGormError(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	var m foodModel
	if err := s.db.WithContext(ctx).Where("id = ?", id).Take(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reload food: %w", err)
	}
	item := toDomainFood(m)
	return &item, nil
}

func (s *GormStore) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&foodModel{})
	if res.Error != nil {
		return fmt.Errorf("delete food: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// translateGormError turns unique and check violations from SQLite or
// PostgreSQL into a *ValidationError.
func translateGormError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return duplicateError(pgErr.ConstraintName)
		case "23514":
			if field, ok := checkConstraints[pgErr.ConstraintName]; ok {
				return newValidationError("value out of range", map[string]string{field: "range"})
			}
		}
		return fmt.Errorf("write food: %w", err)
	}

	msg := err.Error()
	if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(msg, "UNIQUE constraint failed") {
		return duplicateError(msg)
	}
	if strings.Contains(msg, "CHECK constraint failed") {
		for name, field := range checkConstraints {
			if strings.Contains(msg, name) {
				return newValidationError("value out of range", map[string]string{field: "range"})
			}
		}
	}
	return fmt.Errorf("write food: %w", err)
}
