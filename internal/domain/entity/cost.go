package entity

import "time"

// CostEntry is one raw period/group/cost tuple as returned by the billing
// backend, before aggregation.
type CostEntry struct {
	PeriodStart time.Time
	PeriodEnd   time.Time
	GroupKey    string
	Amount      float64
	Currency    string
}

// CostPage is a single page of a backend cost query. A non-nil NextToken
// signals that more pages remain for the same query.
type CostPage struct {
	Entries   []CostEntry
	NextToken *string
}

// CostQuery describes one backend invocation, bounded by the backend's
// per-call date-range limit. NextToken carries pagination state.
type CostQuery struct {
	Start       time.Time
	End         time.Time
	Granularity Granularity
	GroupBy     GroupDimension
	Metric      string
	NextToken   *string
}

// CostPeriod is one aggregated time bucket of a cost series.
type CostPeriod struct {
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
	Cost        float64   `json:"cost"`
	Currency    string    `json:"currency"`
	GroupKey    string    `json:"group,omitempty"`
}

// CostSeries is an ordered, gap-free sequence of CostPeriod for one group
// key (empty key for ungrouped queries), ordered by PeriodStart ascending.
type CostSeries struct {
	GroupKey string
	Currency string
	Periods  []CostPeriod
}

// Total sums the cost of every period in the series.
func (s CostSeries) Total() float64 {
	var total float64
	for _, p := range s.Periods {
		total += p.Cost
	}
	return total
}

// ServiceCost represents a cost amount for a specific AWS service.
type ServiceCost struct {
	Service string  `json:"service"`
	Cost    float64 `json:"cost"`
}

// ServiceRanking is the top-N services by cost over a trailing window,
// descending by cost with a stable name tie-break.
type ServiceRanking struct {
	TopServices   []ServiceCost `json:"top_services"`
	TotalServices int           `json:"total_services"`
	PeriodDays    int           `json:"period_days"`
}

// ForecastPeriod is one predicted time bucket. Bounds are nil when the
// backend supplies no confidence interval.
type ForecastPeriod struct {
	PeriodStart   time.Time
	PeriodEnd     time.Time
	PredictedCost float64
	LowerBound    *float64
	UpperBound    *float64
}

// ForecastResult is a forward cost projection.
type ForecastResult struct {
	Periods  []ForecastPeriod
	Total    float64
	Currency string
}

// ChartDataset is one named numeric sequence positionally aligned to the
// labels of its ChartPayload.
type ChartDataset struct {
	Label string    `json:"label"`
	Data  []float64 `json:"data"`
}

// ChartPayload is the display-agnostic projection consumed by any charting
// front end. It is constructed fresh per request and never mutated after.
type ChartPayload struct {
	Labels   []string       `json:"labels"`
	Datasets []ChartDataset `json:"datasets"`
}

// AnalysisResult bundles everything derived from one analyze request.
type AnalysisResult struct {
	Spec             RequestSpec
	Series           []CostSeries
	Combined         CostSeries
	TotalCost        float64
	AverageDailyCost float64
	Currency         string
	Chart            ChartPayload
}
