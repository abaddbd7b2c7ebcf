package repository

import (
	"context"
	"time"

	"github.com/diillson/aws-cost-analysis-go/internal/domain/entity"
)

// CostRepository defines the interface for the billing query backend.
// Implementations must be safe for concurrent use by multiple requests.
type CostRepository interface {
	// QueryCostAndUsage executes a single backend call for one bounded
	// sub-range and returns one page of entries. The query's NextToken
	// carries pagination state; a non-nil token on the returned page means
	// more pages remain for the same sub-range.
	QueryCostAndUsage(ctx context.Context, query entity.CostQuery) (entity.CostPage, error)

	// QueryCostForecast returns the backend's forward cost projection for
	// the half-open interval [start, end).
	QueryCostForecast(ctx context.Context, start, end time.Time, granularity entity.Granularity) (entity.ForecastResult, error)

	// SupportsGrouping reports whether the backend can group by the given
	// dimension at the given granularity.
	SupportsGrouping(granularity entity.Granularity, dimension entity.GroupDimension) bool

	// GetAccountID returns the billing account identifier.
	GetAccountID(ctx context.Context) (string, error)

	// GetBudgets returns the account's budget limits with actual and
	// forecasted spend.
	GetBudgets(ctx context.Context) ([]entity.BudgetInfo, error)
}
