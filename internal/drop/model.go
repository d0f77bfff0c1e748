package drop

import (
	"time"

	"github.com/google/uuid"
)

// FreeDrop is one product made free for a single claim. A day's drops are
// ephemeral: reseeding deletes and regenerates them.
type FreeDrop struct {
	ID        uuid.UUID
	ProductID uuid.UUID
	DropAt    time.Time

	// ClaimedAt and ClaimedByUserID are set together, exactly once.
	ClaimedAt       *time.Time
	ClaimedByUserID *uuid.UUID

	CreatedAt time.Time
}

func (d *FreeDrop) Claimed() bool {
	return d.ClaimedAt != nil
}
