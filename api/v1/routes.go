package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/deepmap/oapi-codegen/pkg/runtime"
	"github.com/labstack/echo/v4"
)

// ClientError is the body of every failed request.
type ClientError struct {
	Description string `json:"description"`
	Error       string `json:"error"`
}

// PingResponseStatus is the ping status value.
type PingResponseStatus string

// PingResponse is returned by GET /ping.
type PingResponse struct {
	RespondedAt *time.Time          `json:"responded_at,omitempty"`
	Status      *PingResponseStatus `json:"status,omitempty"`
	Version     *string             `json:"version,omitempty"`
}

// GameSummary describes one configured game.
type GameSummary struct {
	Name            string     `json:"name"`
	Description     string     `json:"description,omitempty"`
	Songs           int        `json:"songs"`
	CatalogVersion  uint64     `json:"catalog_version"`
	CatalogLoadedAt *time.Time `json:"catalog_loaded_at,omitempty"`
}

// GamesResponse is returned by GET /games.
type GamesResponse struct {
	Games []GameSummary `json:"games"`
}

// RefreshResponse is returned by POST /{game}/update.
type RefreshResponse struct {
	Game            string  `json:"game"`
	Songs           int     `json:"songs"`
	Downloaded      int     `json:"downloaded"`
	Skipped         int     `json:"skipped"`
	Failed          int     `json:"failed"`
	CatalogVersion  uint64  `json:"catalog_version"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// Game is the game path parameter.
type Game = string

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// (GET /games)
	GetGames(ctx echo.Context) error
	// (GET /openapi.yaml)
	GetOpenapiYaml(ctx echo.Context) error
	// (GET /ping)
	GetPing(ctx echo.Context) error
	// (POST /{game}/generate)
	PostGameGenerate(ctx echo.Context, game Game) error
	// (POST /{game}/update)
	PostGameUpdate(ctx echo.Context, game Game) error
}

// ServerInterfaceWrapper converts echo contexts to parameters.
type ServerInterfaceWrapper struct {
	Handler ServerInterface
}

// GetGames converts echo context to params.
func (w *ServerInterfaceWrapper) GetGames(ctx echo.Context) error {
	return w.Handler.GetGames(ctx)
}

// GetOpenapiYaml converts echo context to params.
func (w *ServerInterfaceWrapper) GetOpenapiYaml(ctx echo.Context) error {
	return w.Handler.GetOpenapiYaml(ctx)
}

// GetPing converts echo context to params.
func (w *ServerInterfaceWrapper) GetPing(ctx echo.Context) error {
	return w.Handler.GetPing(ctx)
}

func bindGame(ctx echo.Context) (Game, error) {
	var game Game
	err := runtime.BindStyledParameterWithLocation("simple", false, "game", runtime.ParamLocationPath, ctx.Param("game"), &game)
	if err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter game: %s", err))
	}
	return game, nil
}

// PostGameGenerate converts echo context to params.
func (w *ServerInterfaceWrapper) PostGameGenerate(ctx echo.Context) error {
	game, err := bindGame(ctx)
	if err != nil {
		return err
	}
	return w.Handler.PostGameGenerate(ctx, game)
}

// PostGameUpdate converts echo context to params.
func (w *ServerInterfaceWrapper) PostGameUpdate(ctx echo.Context) error {
	game, err := bindGame(ctx)
	if err != nil {
		return err
	}
	return w.Handler.PostGameUpdate(ctx, game)
}

// EchoRouter is satisfied by both *echo.Echo and *echo.Group.
type EchoRouter interface {
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

// RegisterHandlers adds each server route to the EchoRouter.
func RegisterHandlers(router EchoRouter, si ServerInterface) {
	RegisterHandlersWithBaseURL(router, si, "")
}

// RegisterHandlersWithBaseURL registers handlers, and prepends BaseURL to the paths, so that the paths
// can be served under a prefix.
func RegisterHandlersWithBaseURL(router EchoRouter, si ServerInterface, baseURL string) {
	wrapper := ServerInterfaceWrapper{
		Handler: si,
	}

	router.GET(baseURL+"/games", wrapper.GetGames)
	router.GET(baseURL+"/openapi.yaml", wrapper.GetOpenapiYaml)
	router.GET(baseURL+"/ping", wrapper.GetPing)
	router.POST(baseURL+"/:game/generate", wrapper.PostGameGenerate)
	router.POST(baseURL+"/:game/update", wrapper.PostGameUpdate)
}
