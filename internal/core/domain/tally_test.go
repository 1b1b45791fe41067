package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTally(t *testing.T) {
	tests := []struct {
		name    string
		labels  []string
		wantErr error
	}{
		{name: "two options", labels: []string{"Yes", "No"}},
		{name: "ten options", labels: []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"}},
		{name: "too few", labels: []string{"Only"}, wantErr: ErrInvalidOptions},
		{name: "too many", labels: []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k"}, wantErr: ErrInvalidOptions},
		{name: "duplicate label", labels: []string{"Yes", "Yes"}, wantErr: ErrInvalidOptions},
		{name: "empty label", labels: []string{"Yes", ""}, wantErr: ErrInvalidOptions},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tally, err := NewTally(tt.labels)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, len(tt.labels), tally.Len())
			assert.Equal(t, int64(0), tally.Total())
		})
	}
}

func TestTallyIncrement(t *testing.T) {
	tally, err := NewTally([]string{"X", "Y"})
	require.NoError(t, err)

	require.NoError(t, tally.Increment("X"))
	require.NoError(t, tally.Increment("Y"))
	require.NoError(t, tally.Increment("X"))

	assert.Equal(t, int64(2), tally.Count("X"))
	assert.Equal(t, int64(1), tally.Count("Y"))
	assert.Equal(t, int64(3), tally.Total())

	err = tally.Increment("Z")
	assert.ErrorIs(t, err, ErrUnknownOption)
	assert.Equal(t, int64(3), tally.Total())
}

func TestTallyJSONRoundTrip(t *testing.T) {
	labels := []string{"zebra", "apple", "mango", "banana"}
	tally, err := NewTally(labels)
	require.NoError(t, err)
	require.NoError(t, tally.Increment("mango"))
	require.NoError(t, tally.Increment("mango"))
	require.NoError(t, tally.Increment("zebra"))

	data, err := json.Marshal(tally)
	require.NoError(t, err)

	var decoded Tally
	require.NoError(t, json.Unmarshal(data, &decoded))

	options := decoded.Options()
	require.Len(t, options, len(labels))
	for i, label := range labels {
		assert.Equal(t, label, options[i].Label, "label order must survive the round trip")
	}
	assert.Equal(t, int64(2), decoded.Count("mango"))
	assert.Equal(t, int64(1), decoded.Count("zebra"))
	assert.Equal(t, int64(0), decoded.Count("apple"))
}

func TestTallyUnmarshalRejectsUnknownVersion(t *testing.T) {
	var tally Tally
	err := json.Unmarshal([]byte(`{"version":99,"options":[]}`), &tally)
	assert.Error(t, err)
}
