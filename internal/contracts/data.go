package contracts

import "time"

// FeatureKind describes how a feature value has been prepared upstream.
// The standardizer only touches RawKind features; everything else is
// passed through unmodified.
type FeatureKind string

const (
	// RawKind is an unbounded numeric feature that needs rolling standardization.
	RawKind FeatureKind = "raw"
	// BoundedKind is already bounded to [0,1] or [-1,1] upstream.
	BoundedKind FeatureKind = "bounded"
	// BinaryKind is a 0/1 flag.
	BinaryKind FeatureKind = "binary"
	// ZScoreKind is already expressed as a rolling z-score upstream.
	ZScoreKind FeatureKind = "zscore"
)

// FeatureRow is one curated record per trading day. Values must not contain
// anything computed from information dated after the row's cutoff boundary.
// Rows are immutable once produced by the feature store.
type FeatureRow struct {
	Date   time.Time          `json:"date"`
	Values map[string]float64 `json:"values"`
}

// Get returns the named feature value.
func (r FeatureRow) Get(name string) (float64, bool) {
	v, ok := r.Values[name]
	return v, ok
}

// LabelBasis identifies what the labeled return is measured against.
type LabelBasis string

const (
	// BasisETF labels the ETF's own next-day return.
	BasisETF LabelBasis = "ETF"
	// BasisExcess labels the return in excess of a benchmark.
	BasisExcess LabelBasis = "EXCESS"
)

// Label is the realized outcome for day T, derived strictly from prices at
// T and T+1. Days where either reference price is missing have no Label at
// all rather than a defaulted one.
type Label struct {
	Date      time.Time  `json:"date"`
	Direction bool       `json:"direction"`
	ReturnBps float64    `json:"return_bps"`
	Basis     LabelBasis `json:"basis"`
}

// DateRange is a half-open range of trading days [Start, End).
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether d falls inside the range.
func (r DateRange) Contains(d time.Time) bool {
	return !d.Before(r.Start) && d.Before(r.End)
}

// Empty reports whether the range covers no days.
func (r DateRange) Empty() bool {
	return !r.Start.Before(r.End)
}

// Overlaps reports whether two ranges share any day.
func (r DateRange) Overlaps(other DateRange) bool {
	return r.Start.Before(other.End) && other.Start.Before(r.End)
}

// String formats the range as "2006-01-02 ~ 2006-01-02".
func (r DateRange) String() string {
	return r.Start.Format("2006-01-02") + " ~ " + r.End.Format("2006-01-02")
}

// Day normalizes a timestamp to a trading-day key (UTC midnight). All
// dates flowing through the pipeline are normalized with this so that
// map lookups and range comparisons never depend on clock components.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
