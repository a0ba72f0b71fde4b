package script

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Type is the outreach stage a script is written for.
type Type string

const (
	TypeApproach  Type = "approach"
	TypeFollowUp  Type = "follow_up"
	TypeObjection Type = "objection"
)

// ParseType validates a raw script type.
func ParseType(s string) (Type, error) {
	switch t := Type(s); t {
	case TypeApproach, TypeFollowUp, TypeObjection:
		return t, nil
	default:
		return "", fmt.Errorf("unknown script type %q", s)
	}
}

// Feedback is the real-world outcome of a delivered script.
type Feedback string

const (
	FeedbackNoResponse Feedback = "no_response"
	FeedbackGotReply   Feedback = "got_reply"
	FeedbackConverted  Feedback = "converted"
)

// ParseFeedback returns ErrInvalidFeedback for anything but the three known values.
func ParseFeedback(s string) (Feedback, error) {
	switch f := Feedback(s); f {
	case FeedbackNoResponse, FeedbackGotReply, FeedbackConverted:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidFeedback, s)
	}
}

// Positive reports whether the outcome should feed the hive.
func (f Feedback) Positive() bool {
	return f == FeedbackGotReply || f == FeedbackConverted
}

// State is either pending (no feedback yet) or resolved with a value and the time it was
// recorded. The fields are unexported so a value without a timestamp cannot be built.
type State struct {
	value Feedback
	at    time.Time
}

func Pending() State { return State{} }

func Resolved(value Feedback, at time.Time) State {
	return State{value: value, at: at.UTC()}
}

func (s State) IsResolved() bool { return s.value != "" }

// Feedback returns the recorded value and time; ok is false while pending.
func (s State) Feedback() (value Feedback, at time.Time, ok bool) {
	return s.value, s.at, s.IsResolved()
}

type stateJSON struct {
	Status     string     `json:"status"`
	Feedback   *Feedback  `json:"feedback"`
	FeedbackAt *time.Time `json:"feedback_at"`
}

func (s State) MarshalJSON() ([]byte, error) {
	if !s.IsResolved() {
		return json.Marshal(stateJSON{Status: "pending"})
	}
	v, at := s.value, s.at
	return json.Marshal(stateJSON{Status: "resolved", Feedback: &v, FeedbackAt: &at})
}

// Script is one generated outreach text. ProspectID is nil once the prospect has been deleted.
type Script struct {
	ID         uuid.UUID  `json:"id"`
	ProspectID *uuid.UUID `json:"prospect_id"`
	TenantID   string     `json:"tenant_id"`
	Type       Type       `json:"script_type"`
	Text       string     `json:"text"`
	State      State      `json:"state"`
	CreatedAt  time.Time  `json:"created_at"`
}
