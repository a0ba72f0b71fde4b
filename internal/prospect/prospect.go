// Package prospect defines discovered leads as read by the script and report pipeline.
package prospect

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a prospect id does not resolve to a record.
var ErrNotFound = errors.New("prospect not found")

// Status is a funnel stage. Transitions are not restricted to forward moves.
type Status string

const (
	StatusNew       Status = "new"
	StatusContacted Status = "contacted"
	StatusQualified Status = "qualified"
	StatusConverted Status = "converted"
	StatusLost      Status = "lost"
)

// ParseStatus validates a raw status value.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusNew, StatusContacted, StatusQualified, StatusConverted, StatusLost:
		return st, nil
	default:
		return "", fmt.Errorf("unknown prospect status %q", s)
	}
}

// Prospect is a discovered potential customer or recruit.
type Prospect struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Source    string    `json:"source"` // free-text channel label, e.g. "LINE"
	Status    Status    `json:"status"`
	Score     int       `json:"score"` // 0-100
	Signal    string    `json:"signal"`
	CreatedAt time.Time `json:"created_at"`
}

// ClampScore keeps a score inside [0,100].
func ClampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
