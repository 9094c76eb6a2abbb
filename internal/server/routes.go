package server

import (
	"github.com/alterfero/dig4el-sub001/internal/server/middleware"
	"github.com/alterfero/dig4el-sub001/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	apiRoutes := e.Group("/api")

	// Snapshot routes
	apiRoutes.GET("/snapshots", routes.GetSnapshotsHandler)
	apiRoutes.GET("/snapshots/:language", routes.GetSnapshotHandler)
	apiRoutes.DELETE("/snapshots/:language", routes.DeleteSnapshotHandler, middleware.AuthMiddleware)
	apiRoutes.POST("/snapshots/:language/build", routes.PostBuildHandler, middleware.AuthMiddleware)
	apiRoutes.GET("/snapshots/:language/entries/:index", routes.GetEntryHandler)

	// Analysis routes
	apiRoutes.GET("/snapshots/:language/orders/:observer", routes.GetOrdersHandler)
	apiRoutes.GET("/snapshots/:language/features/:feature", routes.GetFeatureHandler)

	// Input document schemas
	apiRoutes.GET("/schema/:kind", routes.GetSchemaHandler)
}
