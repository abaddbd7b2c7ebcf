package usecase

import (
	"time"

	"github.com/diillson/aws-cost-analysis-go/internal/domain/entity"
)

// planQueries maps a validated RequestSpec onto backend query descriptors.
// Spans larger than the backend's per-call allowance are split into
// contiguous non-overlapping chunks covering the requested range exactly
// once. MONTHLY spans are never split: a chunk boundary inside a month
// would split a bucket, and a one-year span is at most twelve buckets.
func (uc *AnalysisUseCase) planQueries(spec entity.RequestSpec) []entity.CostQuery {
	base := entity.CostQuery{
		Granularity: spec.Granularity,
		GroupBy:     spec.GroupBy,
		Metric:      spec.Metric,
	}

	if spec.Granularity == entity.GranularityMonthly {
		base.Start, base.End = spec.StartDate, spec.EndDate
		return []entity.CostQuery{base}
	}

	chunk := time.Duration(uc.cfg.MaxDaysPerQuery) * 24 * time.Hour
	var queries []entity.CostQuery
	for start := spec.StartDate; start.Before(spec.EndDate); {
		end := start.Add(chunk)
		if end.After(spec.EndDate) {
			end = spec.EndDate
		}
		q := base
		q.Start, q.End = start, end
		queries = append(queries, q)
		start = end
	}
	return queries
}
