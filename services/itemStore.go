package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/YagooSRV/Azure-Partiel-2a3/models"
	"gorm.io/gorm"
)

// ItemStore is the data-access boundary the HTTP handlers depend on.
// Every method issues at most one statement against the items table.
type ItemStore interface {
	List(ctx context.Context) ([]models.Item, error)
	Get(ctx context.Context, id uint) (models.Item, error)
	Create(ctx context.Context, name string) (models.Item, error)
	Update(ctx context.Context, id uint, name string) error
	Delete(ctx context.Context, id uint) error
	Ping(ctx context.Context) error
}

// GormItemStore implements ItemStore on top of a gorm connection.
type GormItemStore struct {
	DB *gorm.DB
}

// NewItemStore wraps an open gorm connection.
func NewItemStore(db *gorm.DB) *GormItemStore {
	return &GormItemStore{DB: db}
}

// ValidateName rejects names that are empty once surrounding whitespace is removed.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	return nil
}

func (s *GormItemStore) List(ctx context.Context) ([]models.Item, error) {
	items := make([]models.Item, 0)
	if err := s.DB.WithContext(ctx).Find(&items).Error; err != nil {
		return nil, unavailable("list items", err)
	}
	return items, nil
}

func (s *GormItemStore) Get(ctx context.Context, id uint) (models.Item, error) {
	var item models.Item
	err := s.DB.WithContext(ctx).First(&item, id).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Item{}, ErrNotFound
	}
	if err != nil {
		return models.Item{}, unavailable("fetch item", err)
	}
	return item, nil
}

func (s *GormItemStore) Create(ctx context.Context, name string) (models.Item, error) {
	if err := ValidateName(name); err != nil {
		return models.Item{}, err
	}

	item := models.Item{Name: name}
	if err := s.DB.WithContext(ctx).Create(&item).Error; err != nil {
		return models.Item{}, unavailable("save item", err)
	}
	return item, nil
}

// Update overwrites the name in a single conditional statement; zero rows
// affected means the id does not exist.
func (s *GormItemStore) Update(ctx context.Context, id uint, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	result := s.DB.WithContext(ctx).
		Model(&models.Item{}).
		Where("id = ?", id).
		Update("name", name)

	if result.Error != nil {
		return unavailable("update item", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormItemStore) Delete(ctx context.Context, id uint) error {
	// Single round-trip: no fetch before the delete.
	result := s.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Item{})

	if result.Error != nil {
		return unavailable("delete item", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Ping checks that the underlying connection pool can reach the database.
func (s *GormItemStore) Ping(ctx context.Context) error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return unavailable("get connection pool", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return unavailable("ping database", err)
	}
	return nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: failed to %s: %v", ErrStoreUnavailable, op, err)
}
