package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"carefinder/internal/models/db_models"
)

type LookupRepositoryInterface interface {
	CreateLookup(ctx context.Context, entry *db_models.LookupLog) error
	ListLookups(ctx context.Context, page, pageSize int) ([]db_models.LookupLog, error)
	// GetLookup returns nil, nil when no row matches.
	GetLookup(ctx context.Context, id string) (*db_models.LookupLog, error)
}

type LookupRepository struct {
	db *gorm.DB
}

func NewLookupRepository(db *gorm.DB) *LookupRepository {
	return &LookupRepository{db: db}
}

func (r *LookupRepository) CreateLookup(ctx context.Context, entry *db_models.LookupLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *LookupRepository) ListLookups(ctx context.Context, page, pageSize int) ([]db_models.LookupLog, error) {
	var lookups []db_models.LookupLog
	err := r.db.WithContext(ctx).
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Order("created_at DESC").
		Find(&lookups).Error
	return lookups, err
}

func (r *LookupRepository) GetLookup(ctx context.Context, id string) (*db_models.LookupLog, error) {
	var lookup db_models.LookupLog
	err := r.db.WithContext(ctx).First(&lookup, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &lookup, nil
}
