package routes

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/alterfero/dig4el-sub001/internal/server/middleware"
	"github.com/alterfero/dig4el-sub001/pkg/common"
	"github.com/alterfero/dig4el-sub001/pkg/logger"
	"github.com/alterfero/dig4el-sub001/pkg/store"
)

func app(c echo.Context) *middleware.App {
	return c.(*middleware.AppContext).App
}

func bindParams(c echo.Context, params any) error {
	if err := c.Bind(params); err != nil {
		return err
	}
	return c.Validate(params)
}

func badRequest(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request params"})
}

// loadSnapshot returns an *echo.HTTPError for missing snapshots and storage
// failures.
func loadSnapshot(c echo.Context, language string) (*common.Snapshot, error) {
	snap, err := app(c).Store.LoadSnapshot(c.Request().Context(), language)
	if errors.Is(err, store.ErrNotFound) {
		return nil, echo.NewHTTPError(http.StatusNotFound, "Snapshot not found")
	}
	if err != nil {
		logger.Error("[Server] Failed to load snapshot", "language", language, "err", err)
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}
	return snap, nil
}
