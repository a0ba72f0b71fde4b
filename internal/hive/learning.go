// Package hive aggregates positively-reviewed scripts into a shared, content-deduplicated
// learning set and ranks it.
package hive

import (
	"time"

	"github.com/google/uuid"
)

const (
	DefaultListLimit   = 50
	MaxListLimit       = 500
	LeaderboardSize    = 10
	learningTypePrefix = "winning_"
)

// Context is the anonymized origin of a learning. It holds no reference back to the script
// or prospect that produced it.
type Context struct {
	Source   string `json:"source"`
	Signal   string `json:"signal"`
	Feedback string `json:"feedback"`
}

// Learning is a script text that earned positive feedback at least once.
// Content is unique across all tenants.
type Learning struct {
	ID           uuid.UUID `json:"id"`
	LearningType string    `json:"learning_type"`
	Content      string    `json:"content"`
	Context      Context   `json:"context"`
	SuccessCount int       `json:"success_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// Filter narrows a listing. An empty Type matches every learning type.
type Filter struct {
	Type  string
	Limit int
}

// TypeFor derives the learning type for a script type, e.g. "approach" -> "winning_approach".
func TypeFor(scriptType string) string {
	return learningTypePrefix + scriptType
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}
