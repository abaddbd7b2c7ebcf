package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/diillson/aws-cost-analysis-go/internal/domain/entity"
	"github.com/diillson/aws-cost-analysis-go/internal/domain/repository"
	"github.com/diillson/aws-cost-analysis-go/internal/shared/types"
)

// maxPagesPerChunk guards against a backend that never terminates its
// continuation-token loop.
const maxPagesPerChunk = 100

// AnalysisUseCase orchestrates the cost query pipeline: validate, plan,
// query the backend, aggregate, derive metrics and project for charting.
type AnalysisUseCase struct {
	costRepo   repository.CostRepository
	exportRepo repository.ExportRepository
	cfg        *types.Config
	logger     zerolog.Logger
	now        func() time.Time
}

// NewAnalysisUseCase creates a new analysis use case.
func NewAnalysisUseCase(
	costRepo repository.CostRepository,
	exportRepo repository.ExportRepository,
	cfg *types.Config,
	logger zerolog.Logger,
) *AnalysisUseCase {
	return &AnalysisUseCase{
		costRepo:   costRepo,
		exportRepo: exportRepo,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
}

// today returns the current UTC calendar day.
func (uc *AnalysisUseCase) today() time.Time {
	t := uc.now().UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// AnalyzeCosts runs the full pipeline for one analyze request. Either the
// whole requested range aggregates successfully or the request fails as a
// whole; no partial results are returned.
func (uc *AnalysisUseCase) AnalyzeCosts(ctx context.Context, raw RawCostRequest) (entity.AnalysisResult, error) {
	spec, err := uc.ValidateRequest(raw)
	if err != nil {
		return entity.AnalysisResult{}, err
	}
	return uc.runPipeline(ctx, spec)
}

func (uc *AnalysisUseCase) runPipeline(ctx context.Context, spec entity.RequestSpec) (entity.AnalysisResult, error) {
	if spec.GroupBy != entity.GroupByNone && !uc.costRepo.SupportsGrouping(spec.Granularity, spec.GroupBy) {
		return entity.AnalysisResult{}, types.NewBackendRejected(nil,
			"backend does not support grouping by %s at %s granularity", spec.GroupBy, spec.Granularity)
	}

	queries := uc.planQueries(spec)
	uc.logger.Debug().
		Int("chunks", len(queries)).
		Str("granularity", string(spec.Granularity)).
		Str("group_by", string(spec.GroupBy)).
		Msg("executing query plan")

	pages, err := uc.collectPages(ctx, queries)
	if err != nil {
		return entity.AnalysisResult{}, err
	}

	series, combined, err := aggregatePages(spec, pages, uc.cfg.DefaultCurrency)
	if err != nil {
		return entity.AnalysisResult{}, err
	}

	total, avgDaily, err := computeTotals(spec, combined)
	if err != nil {
		return entity.AnalysisResult{}, err
	}

	return entity.AnalysisResult{
		Spec:             spec,
		Series:           series,
		Combined:         combined,
		TotalCost:        total,
		AverageDailyCost: avgDaily,
		Currency:         combined.Currency,
		Chart:            buildChartPayload(spec, series, combined),
	}, nil
}

// collectPages fans out one goroutine per planned chunk and drains each
// chunk's continuation-token loop sequentially. Page arrival order across
// chunks is deliberately unordered; the aggregator keys entries by
// identity, not by arrival. The first failure cancels the remaining
// in-flight calls.
func (uc *AnalysisUseCase) collectPages(ctx context.Context, queries []entity.CostQuery) ([]entity.CostPage, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		pages   []entity.CostPage
		errChan = make(chan error, len(queries))
	)

	for _, query := range queries {
		wg.Add(1)
		go func(q entity.CostQuery) {
			defer wg.Done()
			chunkPages, err := uc.drainChunk(ctx, q)
			if err != nil {
				errChan <- err
				cancel()
				return
			}
			mu.Lock()
			pages = append(pages, chunkPages...)
			mu.Unlock()
		}(query)
	}
	wg.Wait()
	close(errChan)

	if err := <-errChan; err != nil {
		return nil, err
	}
	return pages, nil
}

// drainChunk pages through one sub-range until the backend reports no
// continuation token. Pagination within a chunk is inherently sequential:
// each token depends on the previous page.
func (uc *AnalysisUseCase) drainChunk(ctx context.Context, query entity.CostQuery) ([]entity.CostPage, error) {
	var pages []entity.CostPage
	for i := 0; ; i++ {
		if i >= maxPagesPerChunk {
			return nil, types.NewAggregationInconsistency(
				"backend returned more than %d pages for range %s to %s",
				maxPagesPerChunk, query.Start.Format(dateLayout), query.End.Format(dateLayout))
		}
		page, err := uc.costRepo.QueryCostAndUsage(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("query for range %s to %s failed: %w",
				query.Start.Format(dateLayout), query.End.Format(dateLayout), err)
		}
		pages = append(pages, page)
		if page.NextToken == nil {
			return pages, nil
		}
		query.NextToken = page.NextToken
	}
}

// TopServices returns the top N services by cost over the trailing window.
// The ranking queries DAILY granularity so the window stays aligned to the
// period grid regardless of where in the month it starts.
func (uc *AnalysisUseCase) TopServices(ctx context.Context, days, limit int) (entity.ServiceRanking, error) {
	if err := validateWindow("days", days); err != nil {
		return entity.ServiceRanking{}, err
	}
	if err := validateWindow("limit", limit); err != nil {
		return entity.ServiceRanking{}, err
	}

	end := uc.today()
	spec := entity.RequestSpec{
		StartDate:   end.AddDate(0, 0, -days),
		EndDate:     end,
		Granularity: entity.GranularityDaily,
		GroupBy:     entity.GroupByService,
		Metric:      entity.DefaultMetric,
	}

	result, err := uc.runPipeline(ctx, spec)
	if err != nil {
		return entity.ServiceRanking{}, err
	}
	return buildServiceRanking(result.Series, limit, days), nil
}

// ForecastCosts returns the backend's cost forecast for the next N days.
func (uc *AnalysisUseCase) ForecastCosts(ctx context.Context, days int) (entity.ForecastResult, error) {
	if err := validateWindow("days", days); err != nil {
		return entity.ForecastResult{}, err
	}
	start := uc.today()
	forecast, err := uc.costRepo.QueryCostForecast(ctx, start, start.AddDate(0, 0, days), entity.GranularityDaily)
	if err != nil {
		return entity.ForecastResult{}, err
	}
	if forecast.Currency == "" {
		forecast.Currency = uc.cfg.DefaultCurrency
	}
	return forecast, nil
}

// BudgetReport bundles the account's budgets with its identifier.
type BudgetReport struct {
	AccountID string              `json:"account_id"`
	Budgets   []entity.BudgetInfo `json:"budgets"`
}

// Budgets returns the account's budget limits with actual and forecasted spend.
func (uc *AnalysisUseCase) Budgets(ctx context.Context) (BudgetReport, error) {
	accountID, err := uc.costRepo.GetAccountID(ctx)
	if err != nil {
		return BudgetReport{}, err
	}
	budgets, err := uc.costRepo.GetBudgets(ctx)
	if err != nil {
		return BudgetReport{}, err
	}
	return BudgetReport{AccountID: accountID, Budgets: budgets}, nil
}

// ExportAnalysis runs the analyze pipeline and writes the result to a
// report file in the requested format, returning the written path.
func (uc *AnalysisUseCase) ExportAnalysis(ctx context.Context, raw RawCostRequest, format, reportName string) (string, error) {
	result, err := uc.AnalyzeCosts(ctx, raw)
	if err != nil {
		return "", err
	}
	if reportName == "" {
		reportName = "cost-analysis"
	}

	switch format {
	case "csv":
		return uc.exportRepo.ExportToCSV(result, reportName, uc.cfg.ExportDir)
	case "json":
		return uc.exportRepo.ExportToJSON(result, reportName, uc.cfg.ExportDir)
	case "pdf":
		return uc.exportRepo.ExportToPDF(result, reportName, uc.cfg.ExportDir)
	}
	return "", types.NewInvalidRequest("unsupported export format %q: must be csv, json or pdf", format)
}
