package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRSResultRatingDescription(t *testing.T) {
	tests := []struct {
		name   string
		rating int
		want   string
	}{
		{name: "exceptional", rating: 95, want: "Exceptional"},
		{name: "exceptional floor", rating: 90, want: "Exceptional"},
		{name: "strong", rating: 84, want: "Strong"},
		{name: "good", rating: 70, want: "Good"},
		{name: "average", rating: 55, want: "Average"},
		{name: "weak", rating: 49, want: "Weak"},
		{name: "floor", rating: 1, want: "Weak"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := RSResult{Rating: tt.rating}
			assert.Equal(t, tt.want, r.RatingDescription())
		})
	}
}

func TestAnalysisRecordFlatten(t *testing.T) {
	full := AnalysisRecord{
		Symbol: "AAPL",
		Indicators: &Indicators{
			Price: 150, MA50: 145, MA150: 140, MA200: 135,
			Week52High: 160, Week52Low: 100,
			FromLowPct: 50, FromHighPct: -6.25,
			MA200TrendingUp: true,
		},
		RS:       &RSResult{Symbol: "AAPL", Rating: 85},
		Criteria: &CriteriaResult{Passed: true, Score: 7, MaxScore: 7, FailReasons: []string{}},
	}

	flat := full.Flatten()
	assert.Equal(t, "AAPL", flat.Symbol)
	assert.True(t, flat.Passed)
	assert.Equal(t, 7, flat.Score)
	assert.Equal(t, 85, flat.RSRating)
	assert.Equal(t, "Strong", flat.RSDescription)
	assert.Empty(t, flat.FailReasons)
	assert.Empty(t, flat.Error)

	failed := AnalysisRecord{Symbol: "GONE", Error: "permanent fetch failure"}
	flat = failed.Flatten()
	assert.Equal(t, "GONE", flat.Symbol)
	assert.False(t, flat.Passed)
	assert.Zero(t, flat.Score)
	assert.Equal(t, "permanent fetch failure", flat.Error)
	assert.False(t, failed.Succeeded())
}

func TestBatchReportFlattenPreservesOrder(t *testing.T) {
	report := BatchReport{
		Records: []AnalysisRecord{
			{Symbol: "AAA"},
			{Symbol: "BBB", Error: "boom"},
			{Symbol: "CCC"},
		},
	}

	rows := report.Flatten()
	assert.Len(t, rows, 3)
	assert.Equal(t, "AAA", rows[0].Symbol)
	assert.Equal(t, "BBB", rows[1].Symbol)
	assert.Equal(t, "CCC", rows[2].Symbol)
}
