package aws

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/budgets"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	ceTypes "github.com/aws/aws-sdk-go-v2/service/costexplorer/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/smithy-go"

	"github.com/diillson/aws-cost-analysis-go/internal/domain/entity"
	"github.com/diillson/aws-cost-analysis-go/internal/domain/repository"
	"github.com/diillson/aws-cost-analysis-go/internal/shared/types"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02T15:04:05Z"
)

// CostRepositoryImpl implements CostRepository on top of the Cost Explorer
// API. Clients are built once at process start and are safe for concurrent
// use across requests.
type CostRepositoryImpl struct {
	ceClient      *costexplorer.Client
	budgetsClient *budgets.Client
	stsClient     *sts.Client
	timeout       time.Duration
}

// NewCostRepository loads the AWS configuration for the given profile and
// builds the service clients. Transient backend failures are retried by
// the SDK's standard retryer up to maxRetries attempts.
func NewCostRepository(ctx context.Context, cfg *types.Config) (repository.CostRepository, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithSharedConfigProfile(cfg.AWSProfile),
		config.WithRegion(cfg.AWSRegion),
		config.WithRetryMaxAttempts(cfg.MaxRetries),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config for profile %s: %w", cfg.AWSProfile, err)
	}

	// Cost Explorer e Budgets são APIs globais servidas a partir de us-east-1.
	globalCfg := awsCfg.Copy()
	globalCfg.Region = "us-east-1"

	return &CostRepositoryImpl{
		ceClient:      costexplorer.NewFromConfig(globalCfg),
		budgetsClient: budgets.NewFromConfig(globalCfg),
		stsClient:     sts.NewFromConfig(awsCfg),
		timeout:       time.Duration(cfg.BackendTimeout) * time.Second,
	}, nil
}

// QueryCostAndUsage executes one GetCostAndUsage call for the query's
// sub-range and returns a single page of normalized entries.
func (r *CostRepositoryImpl) QueryCostAndUsage(ctx context.Context, query entity.CostQuery) (entity.CostPage, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	input := &costexplorer.GetCostAndUsageInput{
		TimePeriod: &ceTypes.DateInterval{
			Start: aws.String(formatBoundary(query.Start, query.Granularity)),
			End:   aws.String(formatBoundary(query.End, query.Granularity)),
		},
		Granularity:   toCEGranularity(query.Granularity),
		Metrics:       []string{query.Metric},
		NextPageToken: query.NextToken,
	}
	if query.GroupBy != entity.GroupByNone {
		input.GroupBy = []ceTypes.GroupDefinition{
			{Type: ceTypes.GroupDefinitionTypeDimension, Key: aws.String(string(query.GroupBy))},
		}
	}

	result, err := r.ceClient.GetCostAndUsage(ctx, input)
	if err != nil {
		return entity.CostPage{}, classifyError(err)
	}

	return parsePage(result, query)
}

// parsePage normaliza uma página do GetCostAndUsage em CostEntries. Em
// consultas agrupadas, um período sem atividade volta sem grupos e com o
// mapa Total vazio; o período é pulado e o agregador o preenche com zero.
func parsePage(result *costexplorer.GetCostAndUsageOutput, query entity.CostQuery) (entity.CostPage, error) {
	page := entity.CostPage{NextToken: result.NextPageToken}
	for _, period := range result.ResultsByTime {
		start, err := parseBoundary(aws.ToString(period.TimePeriod.Start))
		if err != nil {
			return entity.CostPage{}, err
		}
		end, err := parseBoundary(aws.ToString(period.TimePeriod.End))
		if err != nil {
			return entity.CostPage{}, err
		}

		if query.GroupBy != entity.GroupByNone {
			for _, group := range period.Groups {
				entry, err := metricEntry(group.Metrics, query.Metric, start, end)
				if err != nil {
					return entity.CostPage{}, err
				}
				if len(group.Keys) > 0 {
					entry.GroupKey = group.Keys[0]
				} else {
					entry.GroupKey = "Unknown"
				}
				page.Entries = append(page.Entries, entry)
			}
			continue
		}

		entry, err := metricEntry(period.Total, query.Metric, start, end)
		if err != nil {
			return entity.CostPage{}, err
		}
		page.Entries = append(page.Entries, entry)
	}

	return page, nil
}

// QueryCostForecast calls GetCostForecast with an 80% prediction interval.
func (r *CostRepositoryImpl) QueryCostForecast(ctx context.Context, start, end time.Time, granularity entity.Granularity) (entity.ForecastResult, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	result, err := r.ceClient.GetCostForecast(ctx, &costexplorer.GetCostForecastInput{
		TimePeriod: &ceTypes.DateInterval{
			Start: aws.String(start.Format(dateLayout)),
			End:   aws.String(end.Format(dateLayout)),
		},
		Metric:                  ceTypes.MetricUnblendedCost,
		Granularity:             toCEGranularity(granularity),
		PredictionIntervalLevel: aws.Int32(80),
	})
	if err != nil {
		return entity.ForecastResult{}, classifyError(err)
	}

	forecast := entity.ForecastResult{}
	if result.Total != nil {
		forecast.Total, err = parseAmount(result.Total.Amount)
		if err != nil {
			return entity.ForecastResult{}, err
		}
		forecast.Currency = aws.ToString(result.Total.Unit)
	}

	for _, fr := range result.ForecastResultsByTime {
		periodStart, err := parseBoundary(aws.ToString(fr.TimePeriod.Start))
		if err != nil {
			return entity.ForecastResult{}, err
		}
		periodEnd, err := parseBoundary(aws.ToString(fr.TimePeriod.End))
		if err != nil {
			return entity.ForecastResult{}, err
		}
		mean, err := parseAmount(fr.MeanValue)
		if err != nil {
			return entity.ForecastResult{}, err
		}
		period := entity.ForecastPeriod{
			PeriodStart:   periodStart,
			PeriodEnd:     periodEnd,
			PredictedCost: mean,
		}
		if fr.PredictionIntervalLowerBound != nil {
			if lower, err := parseAmount(fr.PredictionIntervalLowerBound); err == nil {
				period.LowerBound = &lower
			}
		}
		if fr.PredictionIntervalUpperBound != nil {
			if upper, err := parseAmount(fr.PredictionIntervalUpperBound); err == nil {
				period.UpperBound = &upper
			}
		}
		forecast.Periods = append(forecast.Periods, period)
	}

	return forecast, nil
}

// SupportsGrouping reports the Cost Explorer capability table. Hourly data
// cannot be grouped by usage type.
func (r *CostRepositoryImpl) SupportsGrouping(granularity entity.Granularity, dimension entity.GroupDimension) bool {
	if granularity == entity.GranularityHourly && dimension == entity.GroupByUsageType {
		return false
	}
	return true
}

// GetAccountID returns the caller's AWS account ID.
func (r *CostRepositoryImpl) GetAccountID(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	result, err := r.stsClient.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", fmt.Errorf("error getting account ID: %w", err)
	}
	return aws.ToString(result.Account), nil
}

// GetBudgets returns the account's budgets with actual and forecasted spend.
func (r *CostRepositoryImpl) GetBudgets(ctx context.Context) ([]entity.BudgetInfo, error) {
	accountID, err := r.GetAccountID(ctx)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	result, err := r.budgetsClient.DescribeBudgets(ctx, &budgets.DescribeBudgetsInput{
		AccountId: aws.String(accountID),
	})
	if err != nil {
		return nil, nil // Not a fatal error
	}

	budgetsData := []entity.BudgetInfo{}
	for _, budget := range result.Budgets {
		b := entity.BudgetInfo{Name: aws.ToString(budget.BudgetName)}
		if budget.BudgetLimit != nil {
			b.Limit, _ = strconv.ParseFloat(aws.ToString(budget.BudgetLimit.Amount), 64)
		}
		if budget.CalculatedSpend != nil {
			if budget.CalculatedSpend.ActualSpend != nil {
				b.Actual, _ = strconv.ParseFloat(aws.ToString(budget.CalculatedSpend.ActualSpend.Amount), 64)
			}
			if budget.CalculatedSpend.ForecastedSpend != nil {
				b.Forecast, _ = strconv.ParseFloat(aws.ToString(budget.CalculatedSpend.ForecastedSpend.Amount), 64)
			}
		}
		budgetsData = append(budgetsData, b)
	}

	return budgetsData, nil
}

// metricEntry normalizes one metric map into a CostEntry.
func metricEntry(metrics map[string]ceTypes.MetricValue, metric string, start, end time.Time) (entity.CostEntry, error) {
	value, ok := metrics[metric]
	if !ok {
		return entity.CostEntry{}, fmt.Errorf("backend response is missing metric %s", metric)
	}
	amount, err := parseAmount(value.Amount)
	if err != nil {
		return entity.CostEntry{}, err
	}
	return entity.CostEntry{
		PeriodStart: start,
		PeriodEnd:   end,
		Amount:      amount,
		Currency:    aws.ToString(value.Unit),
	}, nil
}

func parseAmount(s *string) (float64, error) {
	amount, err := strconv.ParseFloat(aws.ToString(s), 64)
	if err != nil {
		return 0, fmt.Errorf("backend returned a non-numeric amount %q: %w", aws.ToString(s), err)
	}
	return amount, nil
}

// formatBoundary formats a range boundary the way the API expects it:
// hourly queries take full timestamps, everything else calendar dates.
func formatBoundary(t time.Time, g entity.Granularity) string {
	if g == entity.GranularityHourly {
		return t.UTC().Format(dateTimeLayout)
	}
	return t.UTC().Format(dateLayout)
}

func parseBoundary(s string) (time.Time, error) {
	if t, err := time.ParseInLocation(dateLayout, s, time.UTC); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(dateTimeLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("backend returned an unparseable period boundary %q", s)
	}
	return t, nil
}

func toCEGranularity(g entity.Granularity) ceTypes.Granularity {
	switch g {
	case entity.GranularityMonthly:
		return ceTypes.GranularityMonthly
	case entity.GranularityHourly:
		return ceTypes.GranularityHourly
	default:
		return ceTypes.GranularityDaily
	}
}

// classifyError separates throttling and timeouts, which the caller may
// surface as service-unavailable, from queries the backend rejected
// outright.
func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return types.NewBackendTransient(err, "billing backend timed out")
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "ThrottlingException", "TooManyRequestsException", "LimitExceededException", "RequestLimitExceeded":
			return types.NewBackendTransient(err, "billing backend throttled the request")
		case "ValidationException", "DataUnavailableException", "BillExpirationException", "UnresolvableUsageUnitException":
			return types.NewBackendRejected(err, "billing backend rejected the query")
		}
	}

	return fmt.Errorf("billing backend call failed: %w", err)
}
