package routes

import (
	"errors"
	"net/http"
	"slices"

	"github.com/labstack/echo/v4"

	"github.com/alterfero/dig4el-sub001/pkg/order"
	"github.com/alterfero/dig4el-sub001/pkg/stats"
)

func GetOrdersHandler(c echo.Context) error {
	type getOrdersParams struct {
		Language  string `param:"language" validate:"required"`
		Observer  string `param:"observer" validate:"required"`
		Canonical bool   `query:"canonical"`
		Normalize bool   `query:"normalize"`
	}

	params := new(getOrdersParams)
	if err := bindParams(c, params); err != nil {
		return badRequest(c)
	}

	cfg := app(c).Config
	obs, err := order.ByName(params.Observer, params.Normalize || cfg.NormalizeUnresolved)
	if errors.Is(err, order.ErrUnknownObserver) {
		return c.JSON(http.StatusNotFound, map[string]any{
			"error":     "Unknown observer",
			"observers": order.ObserverNames(),
		})
	}
	if err != nil {
		return badRequest(c)
	}

	snap, err := loadSnapshot(c, params.Language)
	if err != nil {
		return err
	}

	resolver := cfg.Table().Resolver(snap.Language)
	result := order.Observe(snap.Graph, obs, resolver, cfg.Elements(), params.Canonical)

	type ordersResponse struct {
		*order.Result
		Total      int            `json:"total"`
		AgentReady map[string]int `json:"agent_ready"`
	}
	return c.JSON(http.StatusOK, ordersResponse{
		Result:     result,
		Total:      result.Total(),
		AgentReady: result.AgentReady(),
	})
}

func GetFeatureHandler(c echo.Context) error {
	type getFeatureParams struct {
		Language string `param:"language" validate:"required"`
		Feature  string `param:"feature" validate:"required"`
		Focus    string `query:"focus"`
	}

	params := new(getFeatureParams)
	if err := bindParams(c, params); err != nil {
		return badRequest(c)
	}

	snap, err := loadSnapshot(c, params.Language)
	if err != nil {
		return err
	}

	cfg := app(c).Config
	feature, _ := cfg.Catalog().Lookup(params.Feature)
	locations := stats.ValueLocationsFor(snap.Graph, feature)

	res := map[string]any{
		"feature":   feature,
		"locations": locations,
	}
	if params.Focus != "" {
		if !slices.Contains(locations.Buckets(), params.Focus) {
			return c.JSON(http.StatusNotFound, map[string]any{
				"error":   "Unknown focus value",
				"buckets": locations.Buckets(),
			})
		}
		resolver := cfg.Table().Resolver(snap.Language)
		res["focus"] = params.Focus
		res["differential"] = stats.FrequencyDifferential(snap.Graph, locations, params.Focus, resolver)
	}
	return c.JSON(http.StatusOK, res)
}
