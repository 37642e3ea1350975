package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// Check pings one backing service.
type Check func(ctx context.Context) error

// HealthCheck reports "healthy" when every check passes and 503 otherwise.
// Failure details are logged, never returned.
func HealthCheck(checks map[string]Check, log logrus.FieldLogger) echo.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)
	log = log.WithField("handler", "health")

	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		results := make(map[string]string, len(checks))
		for _, name := range names {
			if err := checks[name](ctx); err != nil {
				log.WithError(err).WithField("component", name).Error("health check failed")
				results[name] = "unavailable"
				status = http.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}
		state := "healthy"
		if status != http.StatusOK {
			state = "unhealthy"
		}
		return c.JSON(status, echo.Map{
			"status":  state,
			"service": "inkwell-api",
			"checks":  results,
		})
	}
}
