package prospect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	for _, s := range []string{"new", "contacted", "qualified", "converted", "lost"} {
		st, err := ParseStatus(s)
		require.NoError(t, err, s)
		assert.Equal(t, Status(s), st)
	}

	_, err := ParseStatus("archived")
	assert.Error(t, err)
	_, err = ParseStatus("")
	assert.Error(t, err)
}

func TestClampScore(t *testing.T) {
	assert.Equal(t, 0, ClampScore(-5))
	assert.Equal(t, 70, ClampScore(70))
	assert.Equal(t, 100, ClampScore(130))
}
