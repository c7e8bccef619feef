package server

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"time"

	"github.com/brpaz/echozap"
	"github.com/labstack/echo-contrib/prometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/tdewolff/minify"
	"github.com/tdewolff/minify/html"
	api "github.com/wrouesnel/ratingcard/api/v1"
	"github.com/wrouesnel/ratingcard/assets"
	"github.com/wrouesnel/ratingcard/pkg/games"
	"github.com/wrouesnel/ratingcard/pkg/pongorenderer"
	"github.com/wrouesnel/ratingcard/version"
	"go.uber.org/zap"
)

type ApiServerConfig struct {
	Prefix          string        `help:"Prefix the API is bing served under, if any"`
	Host            string        `help:"Host the API should be served on" default:""`
	Port            int           `help:"Port to serve on" default:"8080"`
	RenderWorkers   int           `help:"Maximum number of cards rendered at once" default:"2"`
	BodyLimit       string        `help:"Largest accepted request body" default:"4M"`
	RefreshSchedule string        `help:"Cron schedule for catalog refreshes, empty to disable" default:""`
	ShutdownTimeout time.Duration `help:"Time allowed for in-flight requests on shutdown" default:"10s"`
}

var (
	ErrApiInitializationFailed = errors.New("API failed to initialize")
)

// Api launches an ApiV1 instance server and manages it's lifecycle.
func Api(ctx context.Context, serverConfig ApiServerConfig, assetConfig assets.Config, registry *games.Registry) error {
	logger := zap.L()
	logger.Info("Starting API server")
	// Create the API
	apiConfig := &api.Config{
		Games:         registry,
		RenderWorkers: serverConfig.RenderWorkers,
	}
	apiInstance, apiPrefix, err := api.NewAPI(apiConfig)
	if err != nil {
		logger.Error("API failed to initialize", zap.Error(err))
		return errors.Wrap(ErrApiInitializationFailed, err.Error())
	}

	registry.Watch(ctx)

	if serverConfig.RefreshSchedule != "" {
		cronRunner := NewCron()
		for _, game := range registry.All() {
			if err := NewRefreshJob(ctx, game).Start(cronRunner, serverConfig.RefreshSchedule); err != nil {
				return err
			}
		}
		cronRunner.Start()
		defer func() { <-cronRunner.Stop().Done() }()
	}

	// Start the API
	if err := Server(ctx, serverConfig,
		ApiConfigure(serverConfig, apiInstance, apiPrefix),
		StatusConfigure(serverConfig, assetConfig, registry, apiPrefix)); err != nil {
		logger.Error("Error from server", zap.Error(err))
		return errors.Wrap(err, "Server exiting with error")
	}

	return nil
}

// ApiConfigure implements the logic necessary to launch an API from a server config and a server.
// The primary difference to Api() is that the apInstance interface is explicitly passed.
func ApiConfigure[T api.ServerInterface](serverConfig ApiServerConfig, apiInstance T, apiPrefix string) func(e *echo.Echo) error {
	return func(e *echo.Echo) error {
		var logger = zap.L().With(zap.String("subsystem", "server"))

		fullApiPrefix := fmt.Sprintf("%s/api/%s", serverConfig.Prefix, apiPrefix)
		logger.Info("Initializing API with apiPrefix",
			zap.String("configured_prefix", serverConfig.Prefix),
			zap.String("api_prefix", apiPrefix),
			zap.String("api_basepath", fullApiPrefix))

		api.RegisterHandlersWithBaseURL(e, apiInstance, fullApiPrefix)
		// Add the Swagger API as the frontend.
		uiPrefix := fmt.Sprintf("%s/ui", fullApiPrefix)
		uiHandler := EchoSwaggerUIHandler(uiPrefix, api.OpenAPISpec)
		e.GET(uiPrefix, uiHandler)
		e.GET(fmt.Sprintf("%s/*", uiPrefix), uiHandler)
		logger.Info("Swagger UI configured apiPrefix", zap.String("ui_path", uiPrefix))

		return nil
	}
}

// StatusConfigure serves the status page and its stylesheet from the web assets.
func StatusConfigure(serverConfig ApiServerConfig, assetConfig assets.Config, registry *games.Registry, apiPrefix string) func(e *echo.Echo) error {
	return func(e *echo.Echo) error {
		webRoot, err := assets.Web()
		if err != nil {
			return errors.Wrap(err, "StatusConfigure")
		}
		staticRoot, err := fs.Sub(webRoot, "static")
		if err != nil {
			return errors.Wrap(err, "StatusConfigure: static assets")
		}

		minifier := minify.New()
		minifier.AddFunc("text/html", html.Minify)

		templateSet := pongorenderer.NewTemplateSet("web", webRoot, assetConfig.DebugTemplates)
		e.Renderer = pongorenderer.NewRenderer(templateSet, minifier)

		e.GET(fmt.Sprintf("%s/", serverConfig.Prefix), StatusPage(registry, fmt.Sprintf("%s/api/%s", serverConfig.Prefix, apiPrefix)))
		e.GET(fmt.Sprintf("%s/static/*", serverConfig.Prefix), StaticGet(staticRoot))
		e.HEAD(fmt.Sprintf("%s/static/*", serverConfig.Prefix), StaticHead(staticRoot))
		return nil
	}
}

// NewEcho configures an Echo server with standard capabilities and configuration functions.
func NewEcho(serverConfig ApiServerConfig, ConfigFns ...func(e *echo.Echo) error) *echo.Echo {
	logger := zap.L().With(zap.String("subsystem", "server"))

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Logger.SetOutput(io.Discard)

	// Setup Prometheus monitoring
	p := prometheus.NewPrometheus(version.Name, nil)
	p.Use(e)

	// Setup logging
	e.Use(echozap.ZapLogger(zap.L()))
	e.Use(middleware.BodyLimit(serverConfig.BodyLimit))

	// Add ready and liveness endpoints
	e.GET("/-/ready", Ready)
	e.GET("/-/live", Live)
	e.GET("/-/started", Started)

	for _, configFn := range ConfigFns {
		if err := configFn(e); err != nil {
			logger.Error("Failed calling configuration function", zap.Error(err))
		}
	}
	return e
}

// Server starts an Echo server and shuts it down when ctx is cancelled.
func Server(ctx context.Context, serverConfig ApiServerConfig, ConfigFns ...func(e *echo.Echo) error) error {
	logger := zap.L().With(zap.String("subsystem", "server"))
	e := NewEcho(serverConfig, ConfigFns...)

	listenAddr := fmt.Sprintf("%s:%d", serverConfig.Host, serverConfig.Port)
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Listening", zap.String("address", listenAddr))
		errCh <- e.Start(listenAddr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), serverConfig.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
