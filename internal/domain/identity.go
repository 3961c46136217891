package domain

import (
	"github.com/google/uuid"

	"github.com/Gigatchad/e-learning/internal/models"
)

// Identity is the authenticated caller for the duration of one request.
// It is rebuilt from the store on every request and never persisted, so
// role changes and deactivations take effect on the next call.
type Identity struct {
	ID     uint
	UUID   uuid.UUID
	Email  string
	Role   models.Role
	Active bool
}
