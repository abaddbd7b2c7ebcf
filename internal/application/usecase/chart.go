package usecase

import (
	"github.com/diillson/aws-cost-analysis-go/internal/domain/entity"
)

// buildChartPayload projects the aggregated series into the
// charting-library-agnostic label/dataset structure. Labels are the
// canonical period-start strings of the combined series; every dataset is
// positionally aligned to them. Because the aggregator gap-fills all
// series over the same period grid, alignment holds by construction: a
// group with no activity in some period contributes an explicit zero.
func buildChartPayload(spec entity.RequestSpec, series []entity.CostSeries, combined entity.CostSeries) entity.ChartPayload {
	payload := entity.ChartPayload{
		Labels:   make([]string, 0, len(combined.Periods)),
		Datasets: []entity.ChartDataset{},
	}
	for _, p := range combined.Periods {
		payload.Labels = append(payload.Labels, spec.Granularity.Label(p.PeriodStart))
	}

	if spec.GroupBy == entity.GroupByNone {
		data := make([]float64, 0, len(combined.Periods))
		for _, p := range combined.Periods {
			data = append(data, p.Cost)
		}
		payload.Datasets = append(payload.Datasets, entity.ChartDataset{Label: "Cost", Data: data})
		return payload
	}

	for _, s := range series {
		data := make([]float64, 0, len(s.Periods))
		for _, p := range s.Periods {
			data = append(data, p.Cost)
		}
		payload.Datasets = append(payload.Datasets, entity.ChartDataset{Label: s.GroupKey, Data: data})
	}
	return payload
}
