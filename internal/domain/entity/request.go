package entity

import (
	"fmt"
	"strings"
	"time"
)

// DefaultMetric is the cost metric every query uses. The API always
// reports unblended cost.
const DefaultMetric = "UnblendedCost"

// Granularity is the time-bucket width of a cost query.
type Granularity string

const (
	GranularityDaily   Granularity = "DAILY"
	GranularityMonthly Granularity = "MONTHLY"
	GranularityHourly  Granularity = "HOURLY"
)

// ParseGranularity normalizes a granularity token, accepting any casing.
func ParseGranularity(s string) (Granularity, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", string(GranularityDaily):
		return GranularityDaily, nil
	case string(GranularityMonthly):
		return GranularityMonthly, nil
	case string(GranularityHourly):
		return GranularityHourly, nil
	}
	return "", fmt.Errorf("unknown granularity %q", s)
}

// Next returns the start of the period following the one starting at t.
func (g Granularity) Next(t time.Time) time.Time {
	switch g {
	case GranularityMonthly:
		return t.AddDate(0, 1, 0)
	case GranularityHourly:
		return t.Add(time.Hour)
	default:
		return t.AddDate(0, 0, 1)
	}
}

// Label formats a period start in the canonical form used for chart labels
// and period identifiers.
func (g Granularity) Label(t time.Time) string {
	if g == GranularityHourly {
		return t.UTC().Format("2006-01-02T15:04Z")
	}
	return t.UTC().Format("2006-01-02")
}

// GroupDimension is the attribute used to split one time series into
// multiple per-key series.
type GroupDimension string

const (
	GroupByNone      GroupDimension = ""
	GroupByService   GroupDimension = "SERVICE"
	GroupByRegion    GroupDimension = "REGION"
	GroupByUsageType GroupDimension = "USAGE_TYPE"
)

// ParseGroupDimension normalizes a grouping token, accepting any casing.
// An empty token means no grouping.
func ParseGroupDimension(s string) (GroupDimension, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "":
		return GroupByNone, nil
	case string(GroupByService):
		return GroupByService, nil
	case string(GroupByRegion):
		return GroupByRegion, nil
	case string(GroupByUsageType):
		return GroupByUsageType, nil
	}
	return "", fmt.Errorf("unknown grouping dimension %q", s)
}

// RequestSpec is a validated, canonical cost query. StartDate and EndDate
// form a half-open interval aligned to the granularity's period boundary.
type RequestSpec struct {
	StartDate   time.Time
	EndDate     time.Time
	Granularity Granularity
	GroupBy     GroupDimension
	Metric      string
}

// SpanDays returns the number of calendar days covered by the request.
func (r RequestSpec) SpanDays() float64 {
	return r.EndDate.Sub(r.StartDate).Hours() / 24
}
