package dto

// Indicators holds the derived technical values for one symbol. Recomputed on
// every run, never persisted.
type Indicators struct {
	Price           float64 `json:"price"`
	MA50            float64 `json:"ma50"`
	MA150           float64 `json:"ma150"`
	MA200           float64 `json:"ma200"`
	Week52High      float64 `json:"week_52_high"`
	Week52Low       float64 `json:"week_52_low"`
	FromLowPct      float64 `json:"from_low_pct"`
	FromHighPct     float64 `json:"from_high_pct"`
	MA200TrendingUp bool    `json:"ma200_trending_up"`
	Volume          int64   `json:"volume"`
	AvgVolume50     int64   `json:"avg_volume_50"`
}

// RSResult is the relative-strength outcome for one symbol versus the
// benchmark.
type RSResult struct {
	Symbol         string          `json:"symbol"`
	PeriodExcess   map[int]float64 `json:"period_excess"`
	WeightedExcess float64         `json:"weighted_excess"`
	Rating         int             `json:"rating"`
}

// RatingDescription maps a 1-99 rating onto the conventional bands.
func (r RSResult) RatingDescription() string {
	switch {
	case r.Rating >= 90:
		return "Exceptional"
	case r.Rating >= 80:
		return "Strong"
	case r.Rating >= 70:
		return "Good"
	case r.Rating >= 50:
		return "Average"
	default:
		return "Weak"
	}
}

// CriteriaResult is the trend-template evaluation outcome.
type CriteriaResult struct {
	Passed      bool     `json:"passed"`
	Score       int      `json:"score"`
	MaxScore    int      `json:"max_score"`
	FailReasons []string `json:"fail_reasons"`
	VolumeNote  string   `json:"volume_note,omitempty"`
}

// AnalysisRecord is produced exactly once per requested symbol. Either Error
// is set and the value fields are nil, or the value fields are populated.
type AnalysisRecord struct {
	Symbol     string          `json:"symbol"`
	Indicators *Indicators     `json:"indicators,omitempty"`
	RS         *RSResult       `json:"rs,omitempty"`
	Criteria   *CriteriaResult `json:"criteria,omitempty"`
	Error      string          `json:"error,omitempty"`
}

func (r AnalysisRecord) Succeeded() bool {
	return r.Error == ""
}

// BatchReport is the sole output of a screening run.
type BatchReport struct {
	Records        []AnalysisRecord `json:"records"`
	TotalRequested int              `json:"total_requested"`
	TotalSucceeded int              `json:"total_succeeded"`
	TotalFailed    int              `json:"total_failed"`
}

// FlatRecord is the serializable row shape handed to the web/CLI shell.
type FlatRecord struct {
	Symbol          string   `json:"symbol"`
	Passed          bool     `json:"passed"`
	Score           int      `json:"score"`
	MaxScore        int      `json:"max_score"`
	Price           float64  `json:"price"`
	MA50            float64  `json:"ma50"`
	MA150           float64  `json:"ma150"`
	MA200           float64  `json:"ma200"`
	Week52High      float64  `json:"week_52_high"`
	Week52Low       float64  `json:"week_52_low"`
	FromLowPct      float64  `json:"from_low_pct"`
	FromHighPct     float64  `json:"from_high_pct"`
	MA200TrendingUp bool     `json:"ma200_trending_up"`
	RSRating        int      `json:"rs_rating"`
	RSDescription   string   `json:"rs_description"`
	FailReasons     []string `json:"fail_reasons"`
	Error           string   `json:"error,omitempty"`
}

// Flatten converts an AnalysisRecord into its flat row shape. Failed records
// carry only the symbol and error.
func (r AnalysisRecord) Flatten() FlatRecord {
	flat := FlatRecord{
		Symbol: r.Symbol,
		Error:  r.Error,
	}
	if r.Indicators != nil {
		flat.Price = r.Indicators.Price
		flat.MA50 = r.Indicators.MA50
		flat.MA150 = r.Indicators.MA150
		flat.MA200 = r.Indicators.MA200
		flat.Week52High = r.Indicators.Week52High
		flat.Week52Low = r.Indicators.Week52Low
		flat.FromLowPct = r.Indicators.FromLowPct
		flat.FromHighPct = r.Indicators.FromHighPct
		flat.MA200TrendingUp = r.Indicators.MA200TrendingUp
	}
	if r.RS != nil {
		flat.RSRating = r.RS.Rating
		flat.RSDescription = r.RS.RatingDescription()
	}
	if r.Criteria != nil {
		flat.Passed = r.Criteria.Passed
		flat.Score = r.Criteria.Score
		flat.MaxScore = r.Criteria.MaxScore
		flat.FailReasons = r.Criteria.FailReasons
	}
	return flat
}

// Flatten converts the full report into flat rows in record order.
func (b BatchReport) Flatten() []FlatRecord {
	rows := make([]FlatRecord, 0, len(b.Records))
	for _, rec := range b.Records {
		rows = append(rows, rec.Flatten())
	}
	return rows
}
