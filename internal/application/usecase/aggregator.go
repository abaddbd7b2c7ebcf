package usecase

import (
	"sort"
	"time"

	"github.com/diillson/aws-cost-analysis-go/internal/domain/entity"
	"github.com/diillson/aws-cost-analysis-go/internal/shared/types"
)

type aggregationKey struct {
	periodStart int64
	groupKey    string
}

// aggregatePages folds raw backend pages into one gap-free CostSeries per
// group plus a combined series summing across groups per period. It is a
// pure function: page arrival order does not matter, only the
// (period_start, group_key) identity of each entry.
//
// Failures are contract violations, never silently resolved: a currency
// differing from the first observed one, a duplicate (period, group) pair,
// or an inverted period interval all abort the aggregation.
func aggregatePages(spec entity.RequestSpec, pages []entity.CostPage, defaultCurrency string) ([]entity.CostSeries, entity.CostSeries, error) {
	amounts := make(map[aggregationKey]entity.CostEntry)
	groups := make(map[string]bool)
	currency := ""

	for _, page := range pages {
		for _, e := range page.Entries {
			if !e.PeriodEnd.After(e.PeriodStart) {
				return nil, entity.CostSeries{}, types.NewAggregationInconsistency(
					"backend returned an inverted period [%s, %s)",
					e.PeriodStart.Format(dateLayout), e.PeriodEnd.Format(dateLayout))
			}
			if currency == "" {
				currency = e.Currency
			} else if e.Currency != currency {
				return nil, entity.CostSeries{}, types.NewAggregationInconsistency(
					"currency mismatch: series established as %s but entry for %s reports %s",
					currency, spec.Granularity.Label(e.PeriodStart), e.Currency)
			}
			key := aggregationKey{periodStart: e.PeriodStart.UTC().Unix(), groupKey: e.GroupKey}
			if _, exists := amounts[key]; exists {
				return nil, entity.CostSeries{}, types.NewAggregationInconsistency(
					"duplicate entry for period %s group %q",
					spec.Granularity.Label(e.PeriodStart), e.GroupKey)
			}
			amounts[key] = e
			groups[e.GroupKey] = true
		}
	}

	if currency == "" {
		// No billing activity in the whole range. A zero-filled series is
		// still emitted so callers can rely on a complete sequence.
		currency = defaultCurrency
	}

	groupKeys := make([]string, 0, len(groups))
	for g := range groups {
		groupKeys = append(groupKeys, g)
	}
	sort.Strings(groupKeys)
	if len(groupKeys) == 0 && spec.GroupBy == entity.GroupByNone {
		groupKeys = []string{""}
	}

	starts := expectedPeriods(spec)

	series := make([]entity.CostSeries, 0, len(groupKeys))
	for _, g := range groupKeys {
		s := entity.CostSeries{GroupKey: g, Currency: currency, Periods: make([]entity.CostPeriod, 0, len(starts))}
		for _, start := range starts {
			period := entity.CostPeriod{
				PeriodStart: start,
				PeriodEnd:   spec.Granularity.Next(start),
				Currency:    currency,
				GroupKey:    g,
			}
			if e, ok := amounts[aggregationKey{periodStart: start.Unix(), groupKey: g}]; ok {
				period.Cost = e.Amount
			}
			s.Periods = append(s.Periods, period)
		}
		series = append(series, s)
	}

	combined := entity.CostSeries{Currency: currency, Periods: make([]entity.CostPeriod, 0, len(starts))}
	for i, start := range starts {
		period := entity.CostPeriod{
			PeriodStart: start,
			PeriodEnd:   spec.Granularity.Next(start),
			Currency:    currency,
		}
		for _, s := range series {
			period.Cost += s.Periods[i].Cost
		}
		combined.Periods = append(combined.Periods, period)
	}

	return series, combined, nil
}

// expectedPeriods enumerates every period start in [StartDate, EndDate) at
// the spec's granularity. The validator guarantees the boundaries sit on
// the period grid, so stepping from StartDate lands exactly on EndDate.
func expectedPeriods(spec entity.RequestSpec) []time.Time {
	var starts []time.Time
	for t := spec.StartDate.UTC(); t.Before(spec.EndDate); t = spec.Granularity.Next(t) {
		starts = append(starts, t)
	}
	return starts
}
