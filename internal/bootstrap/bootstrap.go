package bootstrap

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	appservices "nutrisense-server-go/internal/app/services"
	domainimage "nutrisense-server-go/internal/domain/image"
	domainprovider "nutrisense-server-go/internal/domain/provider"
	platformconfig "nutrisense-server-go/internal/platform/config"
	platformerrors "nutrisense-server-go/internal/platform/errors"
	platformlogging "nutrisense-server-go/internal/platform/logging"
	platformstorage "nutrisense-server-go/internal/platform/storage"
	httptransport "nutrisense-server-go/internal/transport/http"
	httpapi "nutrisense-server-go/internal/transport/http/api"
)

const shutdownTimeout = 15 * time.Second

type stepFn func(context.Context, *appState) error

type initStep struct {
	ID      string
	Kind    platformerrors.Kind
	Execute stepFn
}

type appState struct {
	config       *platformconfig.Config
	configPath   string
	logger       *platformlogging.Logger
	store        *platformstorage.Store
	dispatcher   *domainprovider.Dispatcher
	orchestrator *appservices.Service
}

// Run drives the whole service lifecycle: staged initialization, serving,
// and graceful shutdown on SIGINT/SIGTERM.
func Run(ctx context.Context) error {
	state := &appState{}

	for _, step := range initGraph() {
		if err := step.Execute(ctx, state); err != nil {
			var typed *platformerrors.Error
			if stderrors.As(err, &typed) {
				return err
			}
			return platformerrors.Wrap(step.Kind, step.ID, "bootstrap step failed", err)
		}
	}

	logger := state.logger
	defer logger.Close()
	if state.store != nil {
		defer state.store.Close()
	}

	rootCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	signalCtx, stop := signal.NotifyContext(rootCtx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(rootCtx)

	if err := startHTTPServer(state, group, groupCtx); err != nil {
		cancel()
		return err
	}

	if err := waitForShutdown(signalCtx, cancel, logger, group); err != nil {
		return err
	}

	logger.InfoTag("BOOT", "server stopped cleanly")
	return nil
}

func initGraph() []initStep {
	return []initStep{
		{ID: "config:load", Kind: platformerrors.KindConfig, Execute: loadConfigStep},
		{ID: "logging:init", Kind: platformerrors.KindBootstrap, Execute: initLoggingStep},
		{ID: "storage:open", Kind: platformerrors.KindStorage, Execute: openStorageStep},
		{ID: "providers:init", Kind: platformerrors.KindConfig, Execute: initProvidersStep},
		{ID: "services:init", Kind: platformerrors.KindBootstrap, Execute: initServicesStep},
	}
}

func loadConfigStep(_ context.Context, state *appState) error {
	result, err := platformconfig.NewLoader().Load()
	if err != nil {
		return err
	}
	state.config = result.Config
	state.configPath = result.Path
	return nil
}

func initLoggingStep(_ context.Context, state *appState) error {
	logger, err := platformlogging.New(platformlogging.Config{
		Level:    state.config.Log.Level,
		Dir:      state.config.Log.Dir,
		Filename: state.config.Log.File,
	})
	if err != nil {
		return err
	}
	state.logger = logger

	if state.configPath == "" {
		logger.InfoTag("CONFIG", "no config file found, using defaults")
	} else {
		logger.InfoTag("CONFIG", "configuration loaded from %s", state.configPath)
	}
	return nil
}

func openStorageStep(_ context.Context, state *appState) error {
	if !state.config.Storage.Enabled {
		state.logger.InfoTag("STORE", "shared analysis storage disabled")
		return nil
	}

	store, err := platformstorage.Open(state.config.Storage, state.logger)
	if err != nil {
		return err
	}
	state.store = store
	return nil
}

func initProvidersStep(_ context.Context, state *appState) error {
	names := platformconfig.ConfiguredProviders(state.config)
	if len(names) == 0 {
		state.logger.WarnTag("CONFIG", "no provider credentials configured, requests will fail")
	}

	providers := make([]domainprovider.Provider, 0, len(names))
	for _, name := range names {
		p, err := domainprovider.NewOpenAI(name, state.config.Providers[name], state.logger)
		if err != nil {
			return err
		}
		providers = append(providers, p)
	}

	state.dispatcher = domainprovider.NewDispatcher(providers, state.logger)
	state.logger.InfoTag("BOOT", "provider chain: %v", state.dispatcher.Names())
	return nil
}

func initServicesStep(_ context.Context, state *appState) error {
	validator := domainimage.NewValidator(domainimage.DefaultLimits(), state.logger)

	orchestrator, err := appservices.NewService(state.dispatcher, validator, state.logger)
	if err != nil {
		return err
	}
	state.orchestrator = orchestrator
	return nil
}

func startHTTPServer(state *appState, g *errgroup.Group, groupCtx context.Context) error {
	router, err := httptransport.Build(httptransport.Options{
		Config: state.config,
		Logger: state.logger,
	})
	if err != nil {
		return err
	}

	// The SPA handles its own routing; unknown non-API paths fall through to
	// the bundle entry point.
	router.Engine.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			httptransport.RespondError(c, http.StatusNotFound, "not found")
			return
		}
		c.File(state.config.Web.StaticDir + "/index.html")
	})

	var sharedStore httpapi.SharedStore
	if state.store != nil {
		sharedStore = state.store
	}

	apiService, err := httpapi.NewService(
		state.config,
		state.logger,
		state.orchestrator,
		sharedStore,
		state.dispatcher.Names(),
	)
	if err != nil {
		return err
	}
	if err := apiService.Register(groupCtx, router.API); err != nil {
		return err
	}

	addr := state.config.Server.IP + ":" + strconv.Itoa(state.config.Server.Port)
	server := &http.Server{
		Addr:    addr,
		Handler: router.Engine,
	}

	g.Go(func() error {
		state.logger.InfoTag("BOOT", "http server listening on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return nil
}

func waitForShutdown(
	ctx context.Context,
	cancel context.CancelFunc,
	logger *platformlogging.Logger,
	g *errgroup.Group,
) error {
	<-ctx.Done()
	logger.InfoTag("BOOT", "shutdown signal received, cleaning up")

	cancel()

	done := make(chan error, 1)
	go func() {
		done <- g.Wait()
	}()

	select {
	case err := <-done:
		if err != nil {
			logger.ErrorTag("BOOT", "error during shutdown: %v", err)
			return err
		}
		logger.InfoTag("BOOT", "all services shut down")
	case <-time.After(shutdownTimeout):
		logger.ErrorTag("BOOT", "shutdown timed out, forcing exit")
		return stderrors.New("shutdown timed out")
	}
	return nil
}
