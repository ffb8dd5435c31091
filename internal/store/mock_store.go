package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mocksmith/mocksmith/internal/models"
)

// ErrMockNotFound reports a lookup that matched no record.
var ErrMockNotFound = errors.New("store: mock not found")

// MockStore persists and resolves mock records. It owns the persisted
// instances; callers always receive their own copy.
type MockStore struct {
	db *gorm.DB
}

// NewMockStore constructs a MockStore over the given connection.
func NewMockStore(db *gorm.DB) *MockStore {
	return &MockStore{db: db}
}

// Insert creates the record, assigning its id and timestamps, and returns
// the persisted copy.
func (s *MockStore) Insert(ctx context.Context, record *models.Mock) (*models.Mock, error) {
	if record == nil {
		return nil, fmt.Errorf("store: nil record")
	}
	stored := *record
	if errCreate := s.db.WithContext(ctx).Create(&stored).Error; errCreate != nil {
		return nil, fmt.Errorf("store: insert mock: %w", errCreate)
	}
	return &stored, nil
}

// FindByID resolves a record by id, returning ErrMockNotFound when absent.
func (s *MockStore) FindByID(ctx context.Context, id string) (*models.Mock, error) {
	var record models.Mock
	if errFind := s.db.WithContext(ctx).Where("id = ?", id).First(&record).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, ErrMockNotFound
		}
		return nil, fmt.Errorf("store: find mock: %w", errFind)
	}
	return &record, nil
}

// Ping verifies the underlying connection is reachable.
func (s *MockStore) Ping(ctx context.Context) error {
	sqlDB, errDB := s.db.DB()
	if errDB != nil {
		return fmt.Errorf("store: ping: %w", errDB)
	}
	if errPing := sqlDB.PingContext(ctx); errPing != nil {
		return fmt.Errorf("store: ping: %w", errPing)
	}
	return nil
}
