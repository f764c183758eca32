package db_models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt int64     `gorm:"autoCreateTime;index"`
}

func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.CreatedAt == 0 {
		b.CreatedAt = time.Now().Unix()
	}
	return nil
}

const (
	LookupOutcomeOK    = "ok"
	LookupOutcomeEmpty = "empty"
	LookupOutcomeError = "error"
)

// LookupLog records one facility lookup. Facility data itself is never stored.
type LookupLog struct {
	BaseModel
	RadiusMeters    int
	MaxResults      int
	LocationLabel   string
	FacilityCount   int
	IncompleteCount int
	Outcome         string `gorm:"size:16;index"`
	ErrorClass      string `gorm:"size:64"`
	DurationMs      int64
}
