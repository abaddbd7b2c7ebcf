package httpapi

import (
	_ "embed"
	"net/http"

	"github.com/labstack/echo/v4"
)

//go:embed dashboard.html
var dashboardHTML string

// handleDashboard serves the interactive dashboard page. The page is a
// static client of the JSON endpoints; the server renders no data into it.
func (s *Server) handleDashboard(c echo.Context) error {
	return c.HTML(http.StatusOK, dashboardHTML)
}
