package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/alterfero/dig4el-sub001/internal/config"
	"github.com/alterfero/dig4el-sub001/internal/queue"
	"github.com/alterfero/dig4el-sub001/pkg/store"
)

type App struct {
	Store  store.SnapshotStorage
	Config *config.Config
	// Queue is nil when no broker is configured. Build requests are then
	// rejected.
	Queue  queue.Channel
	APIKey string
}

type AppContext struct {
	echo.Context
	App *App
}

func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &AppContext{c, app}
			return next(cc)
		}
	}
}
