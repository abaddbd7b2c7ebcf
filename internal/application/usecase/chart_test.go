package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diillson/aws-cost-analysis-go/internal/domain/entity"
)

func TestBuildChartPayloadUngrouped(t *testing.T) {
	spec := entity.RequestSpec{
		StartDate:   day(2024, 7, 1),
		EndDate:     day(2024, 7, 3),
		Granularity: entity.GranularityDaily,
		GroupBy:     entity.GroupByNone,
	}
	series, combined, err := aggregatePages(spec, []entity.CostPage{{Entries: []entity.CostEntry{
		entry(day(2024, 7, 1), spec.Granularity, "", 1.25, "USD"),
		entry(day(2024, 7, 2), spec.Granularity, "", 2.50, "USD"),
	}}}, "USD")
	require.NoError(t, err)

	payload := buildChartPayload(spec, series, combined)

	assert.Equal(t, []string{"2024-07-01", "2024-07-02"}, payload.Labels)
	require.Len(t, payload.Datasets, 1)
	assert.Equal(t, "Cost", payload.Datasets[0].Label)
	assert.Equal(t, []float64{1.25, 2.50}, payload.Datasets[0].Data)
}

func TestBuildChartPayloadGroupedAlignment(t *testing.T) {
	spec := entity.RequestSpec{
		StartDate:   day(2024, 7, 1),
		EndDate:     day(2024, 7, 4),
		Granularity: entity.GranularityDaily,
		GroupBy:     entity.GroupByService,
	}
	series, combined, err := aggregatePages(spec, []entity.CostPage{{Entries: []entity.CostEntry{
		entry(day(2024, 7, 1), spec.Granularity, "Amazon EC2", 1.00, "USD"),
		entry(day(2024, 7, 3), spec.Granularity, "Amazon S3", 0.75, "USD"),
	}}}, "USD")
	require.NoError(t, err)

	payload := buildChartPayload(spec, series, combined)

	require.Len(t, payload.Datasets, 2)
	for _, ds := range payload.Datasets {
		// Every dataset is positionally aligned to the labels.
		assert.Len(t, ds.Data, len(payload.Labels))
	}
	assert.Equal(t, "Amazon EC2", payload.Datasets[0].Label)
	assert.Equal(t, []float64{1.00, 0, 0}, payload.Datasets[0].Data)
	assert.Equal(t, "Amazon S3", payload.Datasets[1].Label)
	assert.Equal(t, []float64{0, 0, 0.75}, payload.Datasets[1].Data)
}

func TestBuildChartPayloadHourlyLabels(t *testing.T) {
	spec := entity.RequestSpec{
		StartDate:   day(2024, 7, 10),
		EndDate:     day(2024, 7, 10).Add(2 * time.Hour),
		Granularity: entity.GranularityHourly,
		GroupBy:     entity.GroupByNone,
	}
	series, combined, err := aggregatePages(spec, nil, "USD")
	require.NoError(t, err)

	payload := buildChartPayload(spec, series, combined)
	assert.Equal(t, []string{"2024-07-10T00:00Z", "2024-07-10T01:00Z"}, payload.Labels)
}

func TestBuildChartPayloadEmptyDatasetsNotNil(t *testing.T) {
	spec := entity.RequestSpec{
		StartDate:   day(2024, 7, 1),
		EndDate:     day(2024, 7, 2),
		Granularity: entity.GranularityDaily,
		GroupBy:     entity.GroupByService,
	}
	series, combined, err := aggregatePages(spec, nil, "USD")
	require.NoError(t, err)

	payload := buildChartPayload(spec, series, combined)
	assert.NotNil(t, payload.Datasets)
	assert.Empty(t, payload.Datasets)
}
