package api

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/wrouesnel/ratingcard/pkg/cards"
	"github.com/wrouesnel/ratingcard/pkg/games"
	"github.com/wrouesnel/ratingcard/pkg/refresher"
	"github.com/wrouesnel/ratingcard/version"
	"go.uber.org/zap"
	"go.withmatt.com/httpheaders"
	"golang.org/x/sync/semaphore"
)

var (
	ErrAPIConfig = errors.New("API configuration is incomplete")
)

const jpegContentType = "image/jpeg"

// apiImpl implements the rating card API.
type apiImpl struct {
	version   string
	games     *games.Registry
	validator *Validator
	workers   *semaphore.Weighted
	logger    *zap.Logger
}

func (a *apiImpl) generateETag(in []byte) string {
	return fmt.Sprintf("sha256:%x", sha256.Sum256(in))
}

func (a *apiImpl) clientError(ctx echo.Context, status int, description string, err error) error {
	return ctx.JSON(status, &ClientError{
		Description: description,
		Error:       err.Error(),
	})
}

func (a *apiImpl) game(ctx echo.Context, name Game) (*games.Game, error) {
	g, err := a.games.Game(name)
	if err != nil {
		return nil, a.clientError(ctx, http.StatusNotFound, "Game is not configured", err)
	}
	return g, nil
}

// PostGameGenerate renders a card. The body is checked against the request schema before
// waiting for a render worker.
func (a *apiImpl) PostGameGenerate(ctx echo.Context, name Game) error {
	g, err := a.game(ctx, name)
	if g == nil {
		return err
	}

	body, err := io.ReadAll(ctx.Request().Body)
	if err != nil {
		return a.clientError(ctx, http.StatusBadRequest, "Request body could not be read", err)
	}
	if err := a.validator.Validate(name, body); err != nil {
		return a.clientError(ctx, http.StatusBadRequest, "Request does not match the schema", err)
	}

	reqCtx := ctx.Request().Context()
	if err := a.workers.Acquire(reqCtx, 1); err != nil {
		return a.clientError(ctx, http.StatusServiceUnavailable, "Gave up waiting for a render worker", err)
	}
	img, err := g.Render(reqCtx, body)
	a.workers.Release(1)
	if err != nil {
		a.logger.Error("Render failed", zap.String("game", name), zap.Error(err))
		return a.clientError(ctx, http.StatusInternalServerError, "Card rendering failed", err)
	}

	var buf bytes.Buffer
	if err := cards.EncodeJPEG(&buf, img); err != nil {
		return a.clientError(ctx, http.StatusInternalServerError, "Card encoding failed", err)
	}
	return a.jpegResponse(ctx, buf.Bytes())
}

func (a *apiImpl) jpegResponse(ctx echo.Context, data []byte) error {
	ctx.Response().Header().Set(httpheaders.Etag, a.generateETag(data))
	ctx.Response().Header().Set(httpheaders.CacheControl, "no-cache")
	return ctx.Blob(http.StatusOK, jpegContentType, data)
}

// PostGameUpdate runs a catalog refresh in the foreground.
func (a *apiImpl) PostGameUpdate(ctx echo.Context, name Game) error {
	g, err := a.game(ctx, name)
	if g == nil {
		return err
	}

	result, err := g.Refresher.Run(ctx.Request().Context())
	if errors.Is(err, refresher.ErrRefreshInProgress) {
		return a.clientError(ctx, http.StatusConflict, "A refresh is already running", err)
	}
	if err != nil {
		a.logger.Error("Refresh failed", zap.String("game", name), zap.Error(err))
		return a.clientError(ctx, http.StatusInternalServerError, "Refresh failed", err)
	}
	return ctx.JSON(http.StatusOK, &RefreshResponse{
		Game:            result.Game,
		Songs:           result.Songs,
		Downloaded:      result.Downloaded,
		Skipped:         result.Skipped,
		Failed:          result.Failed,
		CatalogVersion:  result.Version,
		DurationSeconds: result.Duration.Seconds(),
	})
}

// GetGames lists the configured games and their current catalog snapshot.
func (a *apiImpl) GetGames(ctx echo.Context) error {
	summaries := lo.Map(a.games.All(), func(g *games.Game, _ int) GameSummary {
		snapshot := g.Catalog.Snapshot()
		summary := GameSummary{
			Name:           g.Name,
			Description:    g.Definition.Description,
			Songs:          snapshot.Len(),
			CatalogVersion: snapshot.Version,
		}
		if snapshot.Version > 0 {
			summary.CatalogLoadedAt = lo.ToPtr(snapshot.LoadedAt)
		}
		return summary
	})
	return ctx.JSON(http.StatusOK, &GamesResponse{Games: summaries})
}

// Config provides the up-front configuration necessary to launch an API.
type Config struct {
	Games *games.Registry
	// RenderWorkers bounds concurrent renders.
	RenderWorkers int
}

// NewAPI returns the API server instance and the version prefix.
func NewAPI(apiConfig *Config) (ServerInterface, string, error) {
	if apiConfig.Games == nil || apiConfig.RenderWorkers < 1 {
		return nil, "", ErrAPIConfig
	}

	validator, err := NewValidator()
	if err != nil {
		return nil, "", err
	}

	const apiVersion = "v1"

	return &apiImpl{
		version:   version.Version,
		games:     apiConfig.Games,
		validator: validator,
		workers:   semaphore.NewWeighted(int64(apiConfig.RenderWorkers)),
		logger:    zap.L().With(zap.String("app_version", version.Version), zap.String("api_version", apiVersion)),
	}, apiVersion, nil
}

// GetOpenapiYaml implements returning the openapi.yaml file.
func (a *apiImpl) GetOpenapiYaml(ctx echo.Context) error {
	header := ctx.Response().Header()
	header.Set(httpheaders.ContentDisposition, "inline; filename=\"openapi.yaml\"")
	return ctx.Blob(http.StatusOK, "application/yaml;text/plain", OpenAPISpec)
}

func (a *apiImpl) GetPing(ctx echo.Context) error {
	now := time.Now()
	status := PingResponseStatus("ok")
	return ctx.JSON(http.StatusOK, &PingResponse{
		RespondedAt: &now,
		Status:      &status,
		Version:     &a.version,
	})
}
