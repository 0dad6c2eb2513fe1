package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextClassCode(t *testing.T) {
	tests := []struct {
		name     string
		existing []string
		want     string
	}{
		{name: "seed", existing: nil, want: "CLS01"},
		{name: "sequential", existing: []string{"CLS01", "CLS02"}, want: "CLS03"},
		{name: "numeric not lexical", existing: []string{"CLS9", "CLS10", "CLS2"}, want: "CLS11"},
		{name: "past ninety nine", existing: []string{"CLS98", "CLS99"}, want: "CLS100"},
		{name: "ignores junk", existing: []string{"CLSX", "ABC07", "CLS", "CLS04"}, want: "CLS05"},
		{name: "only junk", existing: []string{"CLSabc"}, want: "CLS01"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NextClassCode(tc.existing))
		})
	}
}

func TestNextClassCodeMonotonic(t *testing.T) {
	var codes []string
	for i := 0; i < 150; i++ {
		codes = append(codes, NextClassCode(codes))
	}
	assert.Equal(t, "CLS150", codes[len(codes)-1])
	assert.Equal(t, "CLS100", codes[99])
}
