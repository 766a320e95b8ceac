package domain

// CategoryBreakdown is the per-category slice of an error report.
type CategoryBreakdown struct {
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// CommonError is one distinct (category, message) pair with its frequency.
type CommonError struct {
	Category     ErrorCategory `json:"category"`
	Message      string        `json:"message"`
	Count        int           `json:"count"`
	ExampleField string        `json:"example_field"`
	SuggestedFix string        `json:"suggested_fix,omitempty"`
}

// ErrorReport is the aggregate view over a run's diagnostics, structured for
// audit export and dashboard consumption.
type ErrorReport struct {
	TotalErrors     int                                 `json:"total_errors"`
	Summary         string                              `json:"summary,omitempty"`
	Categories      map[ErrorCategory]CategoryBreakdown `json:"error_breakdown_by_category"`
	MostCommon      []CommonError                       `json:"most_common_errors"`
	Recommendations []string                            `json:"recommendations"`
	Diagnostics     []Diagnostic                        `json:"detailed_errors"`
}
