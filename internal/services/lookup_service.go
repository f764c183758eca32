package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"carefinder/internal/models/db_models"
	"carefinder/internal/repositories"
	"carefinder/pkg/utils"
)

// LookupRecorder receives one entry per facility lookup.
type LookupRecorder interface {
	RecordLookup(ctx context.Context, entry *db_models.LookupLog) error
}

type NopLookupRecorder struct{}

func (NopLookupRecorder) RecordLookup(context.Context, *db_models.LookupLog) error { return nil }

type LookupServiceInterface interface {
	LookupRecorder
	ListLookups(ctx context.Context, page, pageSize int) ([]db_models.LookupLog, error)
	GetLookup(ctx context.Context, id string) (*db_models.LookupLog, error)
}

type LookupService struct {
	lookupRepo repositories.LookupRepositoryInterface
}

func NewLookupService(lookupRepo repositories.LookupRepositoryInterface) LookupServiceInterface {
	return &LookupService{lookupRepo: lookupRepo}
}

func (s *LookupService) RecordLookup(ctx context.Context, entry *db_models.LookupLog) error {
	if err := s.lookupRepo.CreateLookup(ctx, entry); err != nil {
		return fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	return nil
}

func (s *LookupService) ListLookups(ctx context.Context, page, pageSize int) ([]db_models.LookupLog, error) {
	if page < 1 {
		return nil, utils.ErrInvalidPage
	}
	if pageSize < 1 || pageSize > 100 {
		return nil, utils.ErrInvalidPageSize
	}

	lookups, err := s.lookupRepo.ListLookups(ctx, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	if lookups == nil {
		lookups = []db_models.LookupLog{}
	}
	return lookups, nil
}

func (s *LookupService) GetLookup(ctx context.Context, id string) (*db_models.LookupLog, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, utils.ErrLookupNotFound
	}

	lookup, err := s.lookupRepo.GetLookup(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	if lookup == nil {
		return nil, utils.ErrLookupNotFound
	}
	return lookup, nil
}

// DisabledLookupService is wired when no database is configured. Recording is
// a no-op and reads report utils.ErrAuditDisabled.
type DisabledLookupService struct {
	NopLookupRecorder
}

func (DisabledLookupService) ListLookups(context.Context, int, int) ([]db_models.LookupLog, error) {
	return nil, utils.ErrAuditDisabled
}

func (DisabledLookupService) GetLookup(context.Context, string) (*db_models.LookupLog, error) {
	return nil, utils.ErrAuditDisabled
}
