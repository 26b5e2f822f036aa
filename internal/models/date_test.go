package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate_Scan(t *testing.T) {
	want, err := ParseDate("2024-03-17")
	require.NoError(t, err)

	tests := []struct {
		name string
		src  any
	}{
		{name: "string", src: "2024-03-17"},
		{name: "bytes", src: []byte("2024-03-17")},
		{name: "timestamp text", src: "2024-03-17T00:00:00Z"},
		{name: "time", src: time.Date(2024, 3, 17, 15, 4, 5, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Date
			require.NoError(t, d.Scan(tt.src))
			assert.Equal(t, want, d)
		})
	}

	var d Date
	assert.Error(t, d.Scan(42))
}

func TestDate_JSON(t *testing.T) {
	d := NewDate(time.Date(2023, 12, 1, 23, 59, 0, 0, time.UTC))
	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `"2023-12-01"`, string(b))

	var back Date
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, d, back)
}

func TestNewDate_KeepsLocalCalendarDate(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*3600)
	d := NewDate(time.Date(2024, 3, 10, 1, 30, 0, 0, jakarta))

	assert.Equal(t, "2024-03-10", d.String())
	assert.Equal(t, time.UTC, d.Location())
	assert.Equal(t, 0, d.Hour())
}
