package httpapi

import (
	"math"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/diillson/aws-cost-analysis-go/internal/application/usecase"
	"github.com/diillson/aws-cost-analysis-go/internal/domain/entity"
	"github.com/diillson/aws-cost-analysis-go/internal/shared/types"
)

// costPeriodDTO is the wire form of one aggregated period, with boundaries
// rendered as canonical date strings.
type costPeriodDTO struct {
	PeriodStart string  `json:"period_start"`
	PeriodEnd   string  `json:"period_end"`
	Group       string  `json:"group,omitempty"`
	Cost        float64 `json:"cost"`
	Currency    string  `json:"currency"`
}

type analyzeResponse struct {
	TotalCost        float64             `json:"total_cost"`
	AverageDailyCost float64             `json:"average_daily_cost"`
	Currency         string              `json:"currency"`
	Data             []costPeriodDTO     `json:"data"`
	ChartData        entity.ChartPayload `json:"chart_data"`
}

type serviceDTO struct {
	Service string  `json:"service"`
	Cost    float64 `json:"cost"`
}

type servicesResponse struct {
	TopServices   []serviceDTO `json:"top_services"`
	TotalServices int          `json:"total_services"`
	PeriodDays    int          `json:"period_days"`
}

type forecastPeriodDTO struct {
	Date                    string   `json:"date"`
	MeanValue               float64  `json:"mean_value"`
	PredictionIntervalLower *float64 `json:"prediction_interval_lower,omitempty"`
	PredictionIntervalUpper *float64 `json:"prediction_interval_upper,omitempty"`
}

type forecastResponse struct {
	ForecastData  []forecastPeriodDTO `json:"forecast_data"`
	TotalForecast float64             `json:"total_forecast"`
	Currency      string              `json:"currency"`
	ForecastDays  int                 `json:"forecast_days"`
}

type exportRequest struct {
	usecase.RawCostRequest
	Format     string `json:"format"`
	ReportName string `json:"report_name,omitempty"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

func (s *Server) handleAnalyze(c echo.Context) error {
	var raw usecase.RawCostRequest
	if err := c.Bind(&raw); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{
			Error:  string(types.KindInvalidRequest),
			Detail: "request body must be valid JSON",
		})
	}

	result, err := s.useCase.AnalyzeCosts(c.Request().Context(), raw)
	if err != nil {
		return s.writeError(c, err)
	}

	data := make([]costPeriodDTO, 0)
	if result.Spec.GroupBy == entity.GroupByNone {
		data = appendPeriods(data, result.Spec.Granularity, result.Combined)
	} else {
		// Rows interleave period-major: every group for one period before
		// the next period. All series share the combined period grid.
		for i := range result.Combined.Periods {
			for _, series := range result.Series {
				data = appendPeriod(data, result.Spec.Granularity, series.Periods[i])
			}
		}
	}

	return c.JSON(http.StatusOK, analyzeResponse{
		TotalCost:        round2(result.TotalCost),
		AverageDailyCost: round2(result.AverageDailyCost),
		Currency:         result.Currency,
		Data:             data,
		ChartData:        result.Chart,
	})
}

func (s *Server) handleTopServices(c echo.Context) error {
	days, err := intParam(c, "days", 30)
	if err != nil {
		return s.writeError(c, err)
	}
	limit, err := intParam(c, "limit", 10)
	if err != nil {
		return s.writeError(c, err)
	}

	ranking, err := s.useCase.TopServices(c.Request().Context(), days, limit)
	if err != nil {
		return s.writeError(c, err)
	}

	top := make([]serviceDTO, 0, len(ranking.TopServices))
	for _, sc := range ranking.TopServices {
		top = append(top, serviceDTO{Service: sc.Service, Cost: round2(sc.Cost)})
	}

	return c.JSON(http.StatusOK, servicesResponse{
		TopServices:   top,
		TotalServices: ranking.TotalServices,
		PeriodDays:    ranking.PeriodDays,
	})
}

func (s *Server) handleForecast(c echo.Context) error {
	days, err := intParam(c, "days", 30)
	if err != nil {
		return s.writeError(c, err)
	}

	forecast, err := s.useCase.ForecastCosts(c.Request().Context(), days)
	if err != nil {
		return s.writeError(c, err)
	}

	periods := make([]forecastPeriodDTO, 0, len(forecast.Periods))
	for _, p := range forecast.Periods {
		periods = append(periods, forecastPeriodDTO{
			Date:                    p.PeriodStart.Format("2006-01-02"),
			MeanValue:               round2(p.PredictedCost),
			PredictionIntervalLower: p.LowerBound,
			PredictionIntervalUpper: p.UpperBound,
		})
	}

	return c.JSON(http.StatusOK, forecastResponse{
		ForecastData:  periods,
		TotalForecast: round2(forecast.Total),
		Currency:      forecast.Currency,
		ForecastDays:  days,
	})
}

func (s *Server) handleBudgets(c echo.Context) error {
	report, err := s.useCase.Budgets(c.Request().Context())
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, report)
}

func (s *Server) handleExport(c echo.Context) error {
	var req exportRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{
			Error:  string(types.KindInvalidRequest),
			Detail: "request body must be valid JSON",
		})
	}

	path, err := s.useCase.ExportAnalysis(c.Request().Context(), req.RawCostRequest, req.Format, req.ReportName)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"report": path})
}

// writeError maps a domain error kind onto an HTTP status. Unclassified
// errors surface as internal failures.
func (s *Server) writeError(c echo.Context, err error) error {
	kind := types.KindOf(err)

	status := http.StatusInternalServerError
	switch kind {
	case types.KindInvalidRequest:
		status = http.StatusBadRequest
	case types.KindBackendRejected:
		status = http.StatusUnprocessableEntity
	case types.KindBackendTransient:
		status = http.StatusServiceUnavailable
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error().Err(err).Str("kind", string(kind)).Msg("request failed")
	}

	return c.JSON(status, errorResponse{Error: string(kind), Detail: err.Error()})
}

func appendPeriods(dst []costPeriodDTO, g entity.Granularity, series entity.CostSeries) []costPeriodDTO {
	for _, p := range series.Periods {
		dst = appendPeriod(dst, g, p)
	}
	return dst
}

func appendPeriod(dst []costPeriodDTO, g entity.Granularity, p entity.CostPeriod) []costPeriodDTO {
	return append(dst, costPeriodDTO{
		PeriodStart: g.Label(p.PeriodStart),
		PeriodEnd:   g.Label(p.PeriodEnd),
		Group:       p.GroupKey,
		Cost:        p.Cost,
		Currency:    p.Currency,
	})
}

func intParam(c echo.Context, name string, fallback int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, types.NewInvalidRequest("%s must be an integer, got %q", name, raw)
	}
	return value, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
