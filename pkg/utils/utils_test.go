package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSymbol(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "lowercase", input: "aapl", want: "AAPL"},
		{name: "surrounding whitespace", input: "  msft\t", want: "MSFT"},
		{name: "already normalized", input: "NVDA", want: "NVDA"},
		{name: "class share dot notation", input: "brk.b", want: "BRK.B"},
		{name: "empty", input: "   ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeSymbol(tt.input))
		})
	}
}

func TestDedupSymbols(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{
			name:  "duplicates across case",
			input: []string{"aapl", "AAPL", "msft", "Aapl"},
			want:  []string{"AAPL", "MSFT"},
		},
		{
			name:  "order preserved",
			input: []string{"NVDA", "AAPL", "MSFT", "AAPL"},
			want:  []string{"NVDA", "AAPL", "MSFT"},
		},
		{
			name:  "blank entries dropped",
			input: []string{"", "  ", "AAPL"},
			want:  []string{"AAPL"},
		},
		{
			name:  "nil input",
			input: nil,
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DedupSymbols(tt.input))
		})
	}
}

func TestFormatPercentage(t *testing.T) {
	assert.Equal(t, "+12.3%", FormatPercentage(12.34))
	assert.Equal(t, "-5.0%", FormatPercentage(-5.04))
	assert.Equal(t, "+0.0%", FormatPercentage(0))
}
