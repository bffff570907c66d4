package calculation

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no calculation has the requested id.
var ErrNotFound = errors.New("calculation not found")

// Repository defines the persistence interface for SIRS calculations.
type Repository interface {
	EnsureSchema(ctx context.Context) error
	Create(ctx context.Context, c *Calculation) error
	GetByID(ctx context.Context, id int64) (*Calculation, error)
	ListRecent(ctx context.Context, limit, offset int) ([]*Calculation, int, error)
	Delete(ctx context.Context, id int64) error
	Clear(ctx context.Context) (int64, error)
}
