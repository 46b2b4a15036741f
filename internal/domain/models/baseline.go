package models

// FeatureBaseline holds the historical statistics of one feature for one
// user, computed offline over weekday-only daily aggregates.
type FeatureBaseline struct {
	Mean   float64
	Std    float64
	Median float64
	Q75    float64
	Q95    float64
}

// UserBaseline is one row of the per-user baseline table. Absence of a row
// for a user means no baseline is available.
type UserBaseline struct {
	UserID   string
	Features map[string]FeatureBaseline
}
