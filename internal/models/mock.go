package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Mock is a persisted mock payload together with the parameters that
// produced it. Records are created once and never updated.
type Mock struct {
	ID string `gorm:"type:text;primaryKey" json:"id"` // Time-ordered unique identifier.

	Content datatypes.JSON `gorm:"type:jsonb;not null" json:"content"` // Generated or submitted JSON payload.

	SourceInterfaces string `gorm:"type:text;not null" json:"sourceInterfaces"` // Interface definitions used as type context.
	TargetInterface  string `gorm:"type:text;not null" json:"targetInterface"`  // Interface the content conforms to.

	Size       int  `gorm:"not null" json:"size"`  // Requested number of mock objects.
	Throttling *int `json:"throttling,omitempty"`  // Artificial read delay in milliseconds.

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"createdAt"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updatedAt"` // Last update timestamp.
}

// BeforeCreate assigns a UUIDv7 identifier when none is set. Version 7 keeps
// ids time-ordered so primary key inserts stay append-mostly.
func (m *Mock) BeforeCreate(tx *gorm.DB) error {
	if m.ID != "" {
		return nil
	}
	id, errNew := uuid.NewV7()
	if errNew != nil {
		return errNew
	}
	m.ID = id.String()
	return nil
}

// ThrottlingMS returns the configured delay, zero when unset.
func (m *Mock) ThrottlingMS() int {
	if m.Throttling == nil {
		return 0
	}
	return *m.Throttling
}
