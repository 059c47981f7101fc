package model

import (
	"time"

	"github.com/google/uuid"
)

// FrameworkID is a UUID-based identifier for Framework
type FrameworkID string

// NewFrameworkID generates a new UUID v4 FrameworkID
func NewFrameworkID() FrameworkID {
	return FrameworkID(uuid.New().String())
}

// Framework is a control framework such as ISO 27001 or NIST CSF whose controls are imported from spreadsheets
type Framework struct {
	ID          FrameworkID
	Name        string
	Version     string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
