package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diillson/aws-cost-analysis-go/internal/domain/entity"
	"github.com/diillson/aws-cost-analysis-go/internal/shared/types"
)

// fakeCostRepo is an in-memory CostRepository for pipeline tests. The
// zero value answers every query with an empty page.
type fakeCostRepo struct {
	mu         sync.Mutex
	calls      []entity.CostQuery
	queryFn    func(entity.CostQuery) (entity.CostPage, error)
	forecastFn func(start, end time.Time, g entity.Granularity) (entity.ForecastResult, error)
	supportsFn func(g entity.Granularity, d entity.GroupDimension) bool
	accountID  string
	budgets    []entity.BudgetInfo
}

func (f *fakeCostRepo) QueryCostAndUsage(ctx context.Context, query entity.CostQuery) (entity.CostPage, error) {
	if err := ctx.Err(); err != nil {
		return entity.CostPage{}, err
	}
	f.mu.Lock()
	f.calls = append(f.calls, query)
	f.mu.Unlock()
	if f.queryFn == nil {
		return entity.CostPage{}, nil
	}
	return f.queryFn(query)
}

func (f *fakeCostRepo) QueryCostForecast(ctx context.Context, start, end time.Time, g entity.Granularity) (entity.ForecastResult, error) {
	if f.forecastFn == nil {
		return entity.ForecastResult{}, nil
	}
	return f.forecastFn(start, end, g)
}

func (f *fakeCostRepo) SupportsGrouping(g entity.Granularity, d entity.GroupDimension) bool {
	if f.supportsFn == nil {
		return true
	}
	return f.supportsFn(g, d)
}

func (f *fakeCostRepo) GetAccountID(ctx context.Context) (string, error) {
	return f.accountID, nil
}

func (f *fakeCostRepo) GetBudgets(ctx context.Context) ([]entity.BudgetInfo, error) {
	return f.budgets, nil
}

func (f *fakeCostRepo) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func TestAnalyzeCostsEndToEnd(t *testing.T) {
	repo := &fakeCostRepo{
		queryFn: func(q entity.CostQuery) (entity.CostPage, error) {
			return entity.CostPage{Entries: []entity.CostEntry{
				entry(day(2024, 7, 1), q.Granularity, "Amazon EC2", 1.00, "USD"),
				entry(day(2024, 7, 1), q.Granularity, "Amazon S3", 0.25, "USD"),
				entry(day(2024, 7, 2), q.Granularity, "Amazon EC2", 2.00, "USD"),
				entry(day(2024, 7, 2), q.Granularity, "Amazon S3", 0.50, "USD"),
			}}, nil
		},
	}
	uc := newTestUseCase(repo)

	result, err := uc.AnalyzeCosts(context.Background(), RawCostRequest{
		StartDate: "2024-07-01", EndDate: "2024-07-03", GroupBy: "SERVICE",
	})
	require.NoError(t, err)

	assert.InDelta(t, 3.75, result.TotalCost, 1e-9)
	assert.InDelta(t, 1.875, result.AverageDailyCost, 1e-9)
	assert.Equal(t, "USD", result.Currency)

	assert.Equal(t, []string{"2024-07-01", "2024-07-02"}, result.Chart.Labels)
	require.Len(t, result.Chart.Datasets, 2)
	assert.Equal(t, "Amazon EC2", result.Chart.Datasets[0].Label)
	assert.Equal(t, []float64{1.00, 2.00}, result.Chart.Datasets[0].Data)
	assert.Equal(t, "Amazon S3", result.Chart.Datasets[1].Label)
	assert.Equal(t, []float64{0.25, 0.50}, result.Chart.Datasets[1].Data)
}

func TestAnalyzeCostsPagination(t *testing.T) {
	token := "page-2"
	repo := &fakeCostRepo{}
	repo.queryFn = func(q entity.CostQuery) (entity.CostPage, error) {
		if q.NextToken == nil {
			return entity.CostPage{
				Entries:   []entity.CostEntry{entry(day(2024, 7, 1), q.Granularity, "", 1.00, "USD")},
				NextToken: &token,
			}, nil
		}
		require.Equal(t, token, *q.NextToken)
		return entity.CostPage{
			Entries: []entity.CostEntry{entry(day(2024, 7, 2), q.Granularity, "", 2.00, "USD")},
		}, nil
	}
	uc := newTestUseCase(repo)

	result, err := uc.AnalyzeCosts(context.Background(), RawCostRequest{
		StartDate: "2024-07-01", EndDate: "2024-07-03",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, repo.callCount())
	assert.InDelta(t, 3.00, result.TotalCost, 1e-9)
}

func TestAnalyzeCostsChunkFanOut(t *testing.T) {
	repo := &fakeCostRepo{}
	uc := newTestUseCase(repo)
	uc.cfg.MaxDaysPerQuery = 30

	result, err := uc.AnalyzeCosts(context.Background(), RawCostRequest{
		StartDate: "2024-01-01", EndDate: "2024-03-31",
	})
	require.NoError(t, err)

	// 90 days split into three 30-day chunks, one backend call each.
	assert.Equal(t, 3, repo.callCount())
	assert.Len(t, result.Combined.Periods, 90)
	assert.Zero(t, result.TotalCost)
	assert.Equal(t, "USD", result.Currency)
}

func TestAnalyzeCostsRunawayPagination(t *testing.T) {
	token := "again"
	repo := &fakeCostRepo{
		queryFn: func(q entity.CostQuery) (entity.CostPage, error) {
			return entity.CostPage{NextToken: &token}, nil
		},
	}
	uc := newTestUseCase(repo)

	_, err := uc.AnalyzeCosts(context.Background(), RawCostRequest{
		StartDate: "2024-07-01", EndDate: "2024-07-03",
	})
	require.Error(t, err)
	assert.Equal(t, types.KindAggregationInconsistency, types.KindOf(err))
	assert.Equal(t, maxPagesPerChunk, repo.callCount())
}

func TestAnalyzeCostsUnsupportedGrouping(t *testing.T) {
	repo := &fakeCostRepo{
		supportsFn: func(g entity.Granularity, d entity.GroupDimension) bool {
			return !(g == entity.GranularityHourly && d == entity.GroupByUsageType)
		},
	}
	uc := newTestUseCase(repo)

	_, err := uc.AnalyzeCosts(context.Background(), RawCostRequest{
		StartDate: "2024-07-10", EndDate: "2024-07-12",
		Granularity: "HOURLY", GroupBy: "USAGE_TYPE",
	})
	require.Error(t, err)
	assert.Equal(t, types.KindBackendRejected, types.KindOf(err))
	assert.Zero(t, repo.callCount())
}

func TestAnalyzeCostsBackendErrorPropagates(t *testing.T) {
	repo := &fakeCostRepo{
		queryFn: func(q entity.CostQuery) (entity.CostPage, error) {
			return entity.CostPage{}, types.NewBackendTransient(nil, "throttled")
		},
	}
	uc := newTestUseCase(repo)

	_, err := uc.AnalyzeCosts(context.Background(), RawCostRequest{
		StartDate: "2024-07-01", EndDate: "2024-07-03",
	})
	require.Error(t, err)
	assert.Equal(t, types.KindBackendTransient, types.KindOf(err))
}

func TestTopServices(t *testing.T) {
	repo := &fakeCostRepo{
		queryFn: func(q entity.CostQuery) (entity.CostPage, error) {
			start := q.Start
			return entity.CostPage{Entries: []entity.CostEntry{
				entry(start, q.Granularity, "ServiceA", 10, "USD"),
				entry(start, q.Granularity, "ServiceB", 5, "USD"),
				entry(start, q.Granularity, "ServiceC", 20, "USD"),
			}}, nil
		},
	}
	uc := newTestUseCase(repo)

	ranking, err := uc.TopServices(context.Background(), 30, 2)
	require.NoError(t, err)

	require.Len(t, ranking.TopServices, 2)
	assert.Equal(t, "ServiceC", ranking.TopServices[0].Service)
	assert.Equal(t, "ServiceA", ranking.TopServices[1].Service)
	assert.Equal(t, 3, ranking.TotalServices)
	assert.Equal(t, 30, ranking.PeriodDays)

	// The ranking window ends on the frozen clock's calendar day.
	require.NotEmpty(t, repo.calls)
	assert.Equal(t, day(2024, 7, 15), repo.calls[0].End)
	assert.Equal(t, day(2024, 6, 15), repo.calls[0].Start)
	assert.Equal(t, entity.GranularityDaily, repo.calls[0].Granularity)
	assert.Equal(t, entity.GroupByService, repo.calls[0].GroupBy)
}

func TestTopServicesWindowValidation(t *testing.T) {
	uc := newTestUseCase(&fakeCostRepo{})

	_, err := uc.TopServices(context.Background(), 0, 10)
	require.Error(t, err)
	assert.Equal(t, types.KindInvalidRequest, types.KindOf(err))

	_, err = uc.TopServices(context.Background(), 30, 400)
	require.Error(t, err)
	assert.Equal(t, types.KindInvalidRequest, types.KindOf(err))
}

func TestForecastCosts(t *testing.T) {
	repo := &fakeCostRepo{
		forecastFn: func(start, end time.Time, g entity.Granularity) (entity.ForecastResult, error) {
			assert.Equal(t, day(2024, 7, 15), start)
			assert.Equal(t, day(2024, 7, 22), end)
			assert.Equal(t, entity.GranularityDaily, g)
			return entity.ForecastResult{Total: 70, Currency: "USD"}, nil
		},
	}
	uc := newTestUseCase(repo)

	forecast, err := uc.ForecastCosts(context.Background(), 7)
	require.NoError(t, err)
	assert.InDelta(t, 70, forecast.Total, 1e-9)
	assert.Equal(t, "USD", forecast.Currency)
}

func TestForecastCostsCurrencyFallback(t *testing.T) {
	repo := &fakeCostRepo{
		forecastFn: func(start, end time.Time, g entity.Granularity) (entity.ForecastResult, error) {
			return entity.ForecastResult{}, nil
		},
	}
	uc := newTestUseCase(repo)

	forecast, err := uc.ForecastCosts(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "USD", forecast.Currency)
}

func TestForecastCostsWindowValidation(t *testing.T) {
	uc := newTestUseCase(&fakeCostRepo{})

	_, err := uc.ForecastCosts(context.Background(), 0)
	require.Error(t, err)
	assert.Equal(t, types.KindInvalidRequest, types.KindOf(err))
}

func TestBudgets(t *testing.T) {
	repo := &fakeCostRepo{
		accountID: "123456789012",
		budgets: []entity.BudgetInfo{
			{Name: "monthly-cap", Limit: 1000, Actual: 420.50, Forecast: 890},
		},
	}
	uc := newTestUseCase(repo)

	report, err := uc.Budgets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "123456789012", report.AccountID)
	require.Len(t, report.Budgets, 1)
	assert.Equal(t, "monthly-cap", report.Budgets[0].Name)
}

func TestExportAnalysisUnsupportedFormat(t *testing.T) {
	uc := newTestUseCase(&fakeCostRepo{})

	_, err := uc.ExportAnalysis(context.Background(), RawCostRequest{
		StartDate: "2024-07-01", EndDate: "2024-07-03",
	}, "xlsx", "report")
	require.Error(t, err)
	assert.Equal(t, types.KindInvalidRequest, types.KindOf(err))
}
