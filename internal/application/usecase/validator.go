package usecase

import (
	"time"

	"github.com/diillson/aws-cost-analysis-go/internal/domain/entity"
	"github.com/diillson/aws-cost-analysis-go/internal/shared/types"
)

// RawCostRequest is the unvalidated analyze request as received on the wire.
type RawCostRequest struct {
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Granularity string `json:"granularity"`
	GroupBy     string `json:"group_by,omitempty"`
}

const dateLayout = "2006-01-02"

// ValidateRequest parses and canonicalizes a raw analyze request. All
// checks happen here so that invalid shapes never reach the aggregator.
func (uc *AnalysisUseCase) ValidateRequest(raw RawCostRequest) (entity.RequestSpec, error) {
	start, err := time.ParseInLocation(dateLayout, raw.StartDate, time.UTC)
	if err != nil {
		return entity.RequestSpec{}, types.NewInvalidRequest("invalid start_date %q: expected YYYY-MM-DD", raw.StartDate)
	}
	end, err := time.ParseInLocation(dateLayout, raw.EndDate, time.UTC)
	if err != nil {
		return entity.RequestSpec{}, types.NewInvalidRequest("invalid end_date %q: expected YYYY-MM-DD", raw.EndDate)
	}
	if !end.After(start) {
		return entity.RequestSpec{}, types.NewInvalidRequest("start_date must be before end_date")
	}

	maxSpan := time.Duration(uc.cfg.MaxSpanDays) * 24 * time.Hour
	if end.Sub(start) > maxSpan {
		return entity.RequestSpec{}, types.NewInvalidRequest("date range exceeds the maximum of %d days", uc.cfg.MaxSpanDays)
	}

	granularity, err := entity.ParseGranularity(raw.Granularity)
	if err != nil {
		return entity.RequestSpec{}, types.NewInvalidRequest("invalid granularity %q: must be DAILY, MONTHLY or HOURLY", raw.Granularity)
	}

	// Boundaries must land on the granularity's period grid, otherwise the
	// backend returns partial buckets the aggregator cannot gap-fill.
	if granularity == entity.GranularityMonthly && (start.Day() != 1 || end.Day() != 1) {
		return entity.RequestSpec{}, types.NewInvalidRequest("MONTHLY granularity requires start_date and end_date on the first day of a month")
	}

	if granularity == entity.GranularityHourly {
		oldest := uc.today().AddDate(0, 0, -uc.cfg.HourlyLookbackDays)
		if start.Before(oldest) {
			return entity.RequestSpec{}, types.NewInvalidRequest("HOURLY granularity is limited to the trailing %d days", uc.cfg.HourlyLookbackDays)
		}
	}

	groupBy, err := entity.ParseGroupDimension(raw.GroupBy)
	if err != nil {
		return entity.RequestSpec{}, types.NewInvalidRequest("invalid group_by %q: must be SERVICE, REGION or USAGE_TYPE", raw.GroupBy)
	}

	return entity.RequestSpec{
		StartDate:   start,
		EndDate:     end,
		Granularity: granularity,
		GroupBy:     groupBy,
		Metric:      entity.DefaultMetric,
	}, nil
}

// validateWindow checks the days/limit query parameters used by the
// services and forecast views.
func validateWindow(name string, value int) error {
	if value < 1 || value > 365 {
		return types.NewInvalidRequest("%s must be between 1 and 365, got %d", name, value)
	}
	return nil
}
