package routes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/alterfero/dig4el-sub001/internal/queue"
	"github.com/alterfero/dig4el-sub001/pkg/common"
	"github.com/alterfero/dig4el-sub001/pkg/logger"
	"github.com/alterfero/dig4el-sub001/pkg/store"
)

// BuildPredictor estimates how long a build of the given size takes.
type BuildPredictor interface {
	PredictBuildTime(ctx context.Context, entries int) (time.Duration, error)
}

func GetSnapshotsHandler(c echo.Context) error {
	infos, err := app(c).Store.ListSnapshots(c.Request().Context())
	if err != nil {
		logger.Error("[Server] Failed to list snapshots", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
	return c.JSON(http.StatusOK, infos)
}

func GetSnapshotHandler(c echo.Context) error {
	type getSnapshotParams struct {
		Language string `param:"language" validate:"required"`
	}

	params := new(getSnapshotParams)
	if err := bindParams(c, params); err != nil {
		return badRequest(c)
	}

	snap, err := loadSnapshot(c, params.Language)
	if err != nil {
		return err
	}

	type snapshotResponse struct {
		store.SnapshotInfo
		UniqueWords   []string           `json:"unique_words"`
		WordFrequency map[string]float64 `json:"word_frequency"`
	}
	return c.JSON(http.StatusOK, snapshotResponse{
		SnapshotInfo:  store.Info(snap),
		UniqueWords:   snap.UniqueWords,
		WordFrequency: snap.WordFrequency,
	})
}

func GetEntryHandler(c echo.Context) error {
	type getEntryParams struct {
		Language string `param:"language" validate:"required"`
		Index    int    `param:"index" validate:"min=0"`
	}

	params := new(getEntryParams)
	if err := bindParams(c, params); err != nil {
		return badRequest(c)
	}

	snap, err := loadSnapshot(c, params.Language)
	if err != nil {
		return err
	}
	entry, ok := snap.Graph.Entry(params.Index)
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Entry not found"})
	}
	return c.JSON(http.StatusOK, entry)
}

func DeleteSnapshotHandler(c echo.Context) error {
	type deleteSnapshotParams struct {
		Language string `param:"language" validate:"required"`
	}

	params := new(deleteSnapshotParams)
	if err := bindParams(c, params); err != nil {
		return badRequest(c)
	}

	err := app(c).Store.DeleteSnapshot(c.Request().Context(), params.Language)
	if errors.Is(err, store.ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Snapshot not found"})
	}
	if err != nil {
		logger.Error("[Server] Failed to delete snapshot", "language", params.Language, "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
	return c.NoContent(http.StatusNoContent)
}

// PostBuildHandler enqueues a rebuild of a language's knowledge graph.
func PostBuildHandler(c echo.Context) error {
	type postBuildParams struct {
		Language            string `param:"language" validate:"required"`
		QuestionnairePrefix string `json:"questionnaire_prefix" validate:"required"`
		RecordingPrefix     string `json:"recording_prefix" validate:"required"`
	}

	params := new(postBuildParams)
	if err := bindParams(c, params); err != nil {
		return badRequest(c)
	}

	a := app(c)
	if a.Queue == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "Build queue not configured"})
	}

	msg, err := queue.NewBuildMessage(params.Language, params.QuestionnairePrefix, params.RecordingPrefix)
	if err != nil {
		return badRequest(c)
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
	if err := queue.PublishFIFO(a.Queue, queue.BuildQueue, body); err != nil {
		logger.Error("[Server] Failed to enqueue build", "language", params.Language, "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to enqueue build"})
	}

	res := map[string]any{
		"correlation_id": msg.CorrelationID,
		"language":       msg.Language,
	}
	if predictor, ok := a.Store.(BuildPredictor); ok {
		ctx := c.Request().Context()
		entries := 0
		if prev, err := a.Store.LoadSnapshot(ctx, params.Language); err == nil {
			entries = previousEntries(prev)
		}
		if d, err := predictor.PredictBuildTime(ctx, entries); err == nil && d > 0 {
			res["estimated_duration_ms"] = d.Milliseconds()
		}
	}
	return c.JSON(http.StatusAccepted, res)
}

func previousEntries(s *common.Snapshot) int {
	if s.Graph == nil {
		return 0
	}
	return s.Graph.Len()
}
