package seed

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	const doc = `
notifications:
  - message: "New savings rates"
    timestamp: 2024-05-03T09:00:00+05:30
  - message: Branch closed on Friday
    timestamp: "2024-05-01 10:15:00"
  - message: App maintenance
    timestamp: 2024-04-30
`
	notes, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, notes, 3)

	assert.Equal(t, "New savings rates", notes[0].Message)
	assert.Equal(t, time.Date(2024, 5, 3, 3, 30, 0, 0, time.UTC), notes[0].Timestamp)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 15, 0, 0, time.UTC), notes[1].Timestamp)
	assert.Equal(t, time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC), notes[2].Timestamp)
}

func TestParse_Empty(t *testing.T) {
	notes, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestParse_Errors(t *testing.T) {
	tests := map[string]string{
		"unknown field": "notifications:\n  - message: hi\n    timestamp: 2024-01-01\n    author: me\n",
		"empty message": "notifications:\n  - message: '  '\n    timestamp: 2024-01-01\n",
		"bad timestamp": "notifications:\n  - message: hi\n    timestamp: yesterday\n",
		"not a list":    "notifications: hello\n",
		"missing stamp": "notifications:\n  - message: hi\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}
