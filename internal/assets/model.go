package assets

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusAvailable   Status = "available"
	StatusInUse       Status = "in_use"
	StatusMaintenance Status = "maintenance"
	StatusRetired     Status = "retired"
)

func (s Status) Valid() bool {
	switch s {
	case StatusAvailable, StatusInUse, StatusMaintenance, StatusRetired:
		return true
	}
	return false
}

type Asset struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	Value       float64   `json:"value"`
	CategoryID  uuid.UUID `json:"categoryId"`
	CreatedBy   uuid.UUID `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Filter struct {
	Status     Status
	CategoryID uuid.UUID
	Limit      int
}

var (
	ErrAssetNotFound   = errors.New("asset not found")
	ErrCategoryMissing = errors.New("category does not exist")
)
