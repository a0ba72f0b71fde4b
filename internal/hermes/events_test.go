package hermes

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedbackSubmittedParsing(t *testing.T) {
	raw := `{
		"script_id": "4f9c2a2e-7d0b-4c55-9d57-0a4f1d2b8e11",
		"feedback": "got_reply",
		"user_id": "U123"
	}`

	var evt FeedbackSubmitted
	require.NoError(t, json.Unmarshal([]byte(raw), &evt))
	assert.Equal(t, "4f9c2a2e-7d0b-4c55-9d57-0a4f1d2b8e11", evt.ScriptID)
	assert.Equal(t, "got_reply", evt.Feedback)
	assert.Equal(t, "U123", evt.UserID)
}

func TestLearningRecordedEncoding(t *testing.T) {
	data, err := json.Marshal(LearningRecorded{
		LearningID:   "l-1",
		LearningType: "winning_approach",
		SuccessCount: 2,
		Created:      false,
	})
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, false, m["created"], "created=false must be encoded")
	assert.Equal(t, float64(2), m["success_count"])
}

func TestSubjectsAreNamespaced(t *testing.T) {
	for _, s := range []string{
		SubjectScriptGenerated, SubjectScriptFeedback, SubjectLearningRecorded,
		SubjectReportGenerated, SubjectFeedbackSubmitted,
	} {
		assert.Regexp(t, `^hive\.`, s)
	}
}
