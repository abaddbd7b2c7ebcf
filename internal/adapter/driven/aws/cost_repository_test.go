package aws

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	ceTypes "github.com/aws/aws-sdk-go-v2/service/costexplorer/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diillson/aws-cost-analysis-go/internal/domain/entity"
	"github.com/diillson/aws-cost-analysis-go/internal/shared/types"
)

func metricValue(amount string) map[string]ceTypes.MetricValue {
	return map[string]ceTypes.MetricValue{
		"UnblendedCost": {Amount: aws.String(amount), Unit: aws.String("USD")},
	}
}

func resultPeriod(start, end string) ceTypes.ResultByTime {
	return ceTypes.ResultByTime{
		TimePeriod: &ceTypes.DateInterval{Start: aws.String(start), End: aws.String(end)},
	}
}

func TestParsePageGroupedSkipsIdlePeriods(t *testing.T) {
	active := resultPeriod("2024-07-01", "2024-07-02")
	active.Groups = []ceTypes.Group{
		{Keys: []string{"Amazon EC2"}, Metrics: metricValue("1.00")},
		{Keys: []string{"Amazon S3"}, Metrics: metricValue("0.25")},
	}

	// Um período sem atividade: sem grupos e com Total vazio.
	idle := resultPeriod("2024-07-02", "2024-07-03")
	idle.Total = map[string]ceTypes.MetricValue{}

	query := entity.CostQuery{
		Granularity: entity.GranularityDaily,
		GroupBy:     entity.GroupByService,
		Metric:      "UnblendedCost",
	}
	page, err := parsePage(&costexplorer.GetCostAndUsageOutput{
		ResultsByTime: []ceTypes.ResultByTime{active, idle},
	}, query)
	require.NoError(t, err)

	require.Len(t, page.Entries, 2)
	assert.Equal(t, "Amazon EC2", page.Entries[0].GroupKey)
	assert.InDelta(t, 1.00, page.Entries[0].Amount, 1e-9)
	assert.Equal(t, "Amazon S3", page.Entries[1].GroupKey)
	assert.Equal(t, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), page.Entries[0].PeriodStart)
}

func TestParsePageUngrouped(t *testing.T) {
	period := resultPeriod("2024-07-01", "2024-07-02")
	period.Total = metricValue("3.75")

	query := entity.CostQuery{
		Granularity: entity.GranularityDaily,
		Metric:      "UnblendedCost",
	}
	page, err := parsePage(&costexplorer.GetCostAndUsageOutput{
		ResultsByTime: []ceTypes.ResultByTime{period},
	}, query)
	require.NoError(t, err)

	require.Len(t, page.Entries, 1)
	assert.Equal(t, "", page.Entries[0].GroupKey)
	assert.InDelta(t, 3.75, page.Entries[0].Amount, 1e-9)
	assert.Equal(t, "USD", page.Entries[0].Currency)
}

func TestParsePageUngroupedMissingMetric(t *testing.T) {
	period := resultPeriod("2024-07-01", "2024-07-02")
	period.Total = map[string]ceTypes.MetricValue{}

	query := entity.CostQuery{
		Granularity: entity.GranularityDaily,
		Metric:      "UnblendedCost",
	}
	_, err := parsePage(&costexplorer.GetCostAndUsageOutput{
		ResultsByTime: []ceTypes.ResultByTime{period},
	}, query)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing metric")
}

func TestParsePageGroupWithoutKeys(t *testing.T) {
	period := resultPeriod("2024-07-01", "2024-07-02")
	period.Groups = []ceTypes.Group{{Metrics: metricValue("0.50")}}

	query := entity.CostQuery{
		Granularity: entity.GranularityDaily,
		GroupBy:     entity.GroupByService,
		Metric:      "UnblendedCost",
	}
	page, err := parsePage(&costexplorer.GetCostAndUsageOutput{
		ResultsByTime: []ceTypes.ResultByTime{period},
	}, query)
	require.NoError(t, err)

	require.Len(t, page.Entries, 1)
	assert.Equal(t, "Unknown", page.Entries[0].GroupKey)
}

func TestParsePageCarriesNextToken(t *testing.T) {
	token := "next"
	page, err := parsePage(&costexplorer.GetCostAndUsageOutput{
		NextPageToken: &token,
	}, entity.CostQuery{Metric: "UnblendedCost"})
	require.NoError(t, err)
	require.NotNil(t, page.NextToken)
	assert.Equal(t, token, *page.NextToken)
}

func TestClassifyError(t *testing.T) {
	apiErr := func(code string) error {
		return &smithy.GenericAPIError{Code: code, Message: "backend says no"}
	}

	tests := []struct {
		name string
		err  error
		want types.ErrorKind
	}{
		{"deadline exceeded", context.DeadlineExceeded, types.KindBackendTransient},
		{"throttling", apiErr("ThrottlingException"), types.KindBackendTransient},
		{"too many requests", apiErr("TooManyRequestsException"), types.KindBackendTransient},
		{"limit exceeded", apiErr("LimitExceededException"), types.KindBackendTransient},
		{"request limit", apiErr("RequestLimitExceeded"), types.KindBackendTransient},
		{"validation", apiErr("ValidationException"), types.KindBackendRejected},
		{"data unavailable", apiErr("DataUnavailableException"), types.KindBackendRejected},
		{"bill expiration", apiErr("BillExpirationException"), types.KindBackendRejected},
		{"unresolvable unit", apiErr("UnresolvableUsageUnitException"), types.KindBackendRejected},
		{"anything else", errors.New("dial tcp: connection refused"), types.KindAggregationInconsistency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyError(tt.err)
			require.Error(t, got)
			assert.Equal(t, tt.want, types.KindOf(got))
		})
	}
}
