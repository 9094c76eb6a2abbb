package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/alterfero/dig4el-sub001/pkg/loader"
)

func GetSchemaHandler(c echo.Context) error {
	type getSchemaParams struct {
		Kind string `param:"kind" validate:"required,oneof=questionnaire recording"`
	}

	params := new(getSchemaParams)
	if err := bindParams(c, params); err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Unknown document kind"})
	}

	schema, err := loader.Schema(loader.SourceKind(params.Kind))
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Unknown document kind"})
	}
	return c.JSON(http.StatusOK, schema)
}
