package usecase

import (
	"sort"

	"github.com/diillson/aws-cost-analysis-go/internal/domain/entity"
	"github.com/diillson/aws-cost-analysis-go/internal/shared/types"
)

// computeTotals derives the total cost and the average daily cost from the
// combined series. The average divides by the calendar days spanned by the
// request, not by the period count: the two differ whenever the
// granularity is not DAILY.
func computeTotals(spec entity.RequestSpec, combined entity.CostSeries) (total, avgDaily float64, err error) {
	days := spec.SpanDays()
	if days <= 0 {
		// Unreachable past the validator; a zero span here means the
		// pipeline handed us a spec it never validated.
		return 0, 0, types.NewAggregationInconsistency("request spans %v days", days)
	}
	total = combined.Total()
	return total, total / days, nil
}

// buildServiceRanking sums cost per group key across the range, orders
// descending by cost with a stable name tie-break, and truncates to limit.
// TotalServices counts distinct services before truncation.
func buildServiceRanking(series []entity.CostSeries, limit, periodDays int) entity.ServiceRanking {
	ranked := make([]entity.ServiceCost, 0, len(series))
	for _, s := range series {
		if s.GroupKey == "" {
			continue
		}
		ranked = append(ranked, entity.ServiceCost{Service: s.GroupKey, Cost: s.Total()})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Cost != ranked[j].Cost {
			return ranked[i].Cost > ranked[j].Cost
		}
		return ranked[i].Service < ranked[j].Service
	})

	total := len(ranked)
	if limit < total {
		ranked = ranked[:limit]
	}

	return entity.ServiceRanking{
		TopServices:   ranked,
		TotalServices: total,
		PeriodDays:    periodDays,
	}
}
