package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCondition(t *testing.T) {
	tests := []struct {
		in   string
		want Condition
		ok   bool
	}{
		{"new", ConditionNew, true},
		{" Like  New ", ConditionLikeNew, true},
		{"used - very good", ConditionUsedVeryGood, true},
		{"used-very good", ConditionUsedVeryGood, true},
		{"used-good", ConditionUsedGood, true},
		{"USED -acceptable", ConditionUsedAcceptable, true},
		{"used", "", false},
		{"likenew", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseCondition(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
