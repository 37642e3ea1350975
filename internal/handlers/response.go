package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/anonto42/inkwell/backend/internal/errs"
	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type ctxValidator interface {
	ValidateCtx(ctx context.Context, i interface{}) error
}

// bind decodes the request into req and runs every validation rule on it.
func bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return errs.Validation("Invalid request payload")
		}
		return err
	}
	if v, ok := c.Echo().Validator.(ctxValidator); ok {
		return v.ValidateCtx(c.Request().Context(), req)
	}
	return c.Validate(req)
}

// pageQuery binds and validates page, limit and search, then applies defaults.
func pageQuery(c echo.Context) (models.PageQuery, error) {
	var q models.PageQuery
	if err := bind(c, &q); err != nil {
		return q, err
	}
	q.ApplyDefaults()
	return q, nil
}

func idParam(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, errs.Validation(fmt.Sprintf("%s must be a positive integer", name))
	}
	return uint(id), nil
}

func respond(c echo.Context, status int, message string, data interface{}) error {
	body := echo.Map{"success": true, "message": message}
	if data != nil {
		body["data"] = data
	}
	return c.JSON(status, body)
}

func respondPage(c echo.Context, message string, items interface{}, q models.PageQuery, total int64) error {
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": message,
		"data":    items,
		"meta":    models.NewPageMeta(q, total),
	})
}

// HTTPErrorHandler renders every failure as {"success": false, "message", "errors"}.
// Internal errors are logged and reported without detail.
func HTTPErrorHandler(log logrus.FieldLogger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		message := "Internal server error"
		var details []string

		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			message = http.StatusText(he.Code)
			if m, ok := he.Message.(string); ok {
				message = m
			}
		} else {
			e := errs.From(err)
			status = e.Kind.Status()
			message = e.Message
			details = e.Details
		}

		if status >= http.StatusInternalServerError {
			log.WithFields(logrus.Fields{
				"method":     c.Request().Method,
				"uri":        c.Request().RequestURI,
				"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
			}).WithError(err).Error("request failed")
		}
		if len(details) == 0 {
			details = []string{message}
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, echo.Map{"success": false, "message": message, "errors": details})
		}
		if err != nil {
			log.WithError(err).Warn("write error response")
		}
	}
}
