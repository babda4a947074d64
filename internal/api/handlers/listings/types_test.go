package listings

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexBool(t *testing.T) {
	tests := []struct {
		raw  string
		want *bool
		ok   bool
	}{
		{"", nil, true},
		{"null", nil, true},
		{"true", ptr(true), true},
		{"false", ptr(false), true},
		{`"true"`, ptr(true), true},
		{`"false"`, ptr(false), true},
		{`"TRUE"`, nil, false},
		{`"1"`, nil, false},
		{"1", nil, false},
	}
	for _, tt := range tests {
		got, ok := flexBool(json.RawMessage(tt.raw))
		require.Equal(t, tt.ok, ok, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
	}
}

func ptr(b bool) *bool { return &b }
