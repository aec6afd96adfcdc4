package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	"github.com/Alturino/ecfresh/internal/cart"
	"github.com/Alturino/ecfresh/internal/catalog"
	"github.com/Alturino/ecfresh/internal/checkout"
	"github.com/Alturino/ecfresh/internal/config"
	"github.com/Alturino/ecfresh/internal/constants"
	"github.com/Alturino/ecfresh/internal/controller"
	inErrors "github.com/Alturino/ecfresh/internal/errors"
	"github.com/Alturino/ecfresh/internal/identity"
	"github.com/Alturino/ecfresh/internal/infra"
	"github.com/Alturino/ecfresh/internal/log"
	"github.com/Alturino/ecfresh/internal/middleware"
	"github.com/Alturino/ecfresh/internal/orderstore"
	"github.com/Alturino/ecfresh/internal/otel"
	"github.com/Alturino/ecfresh/internal/pricing"
)

func runStorefront(c context.Context, cfg *config.Config) {
	c, span := otel.Tracer.Start(c, "runStorefront")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyAppName, constants.AppStorefront).
		Str(log.KeyTag, "main runStorefront").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "initializing otel sdk").Logger()
	logger.Info().Msg("initializing otel sdk")
	c = logger.WithContext(c)
	otelShutdowns, err := otel.InitOtelSdk(c, constants.AppStorefront, cfg.Otel)
	if err != nil {
		err = fmt.Errorf("failed initializing otel sdk with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	defer func() {
		logger.Info().Msg("shutting down otel")
		c = logger.WithContext(c)
		if err := otel.ShutdownOtel(c, otelShutdowns); err != nil {
			err = fmt.Errorf("failed shutting down otel with error=%w", err)
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return
		}
		logger.Info().Msg("shutdown otel")
	}()
	logger.Info().Msg("initialized otel sdk")

	logger = logger.With().Str(log.KeyProcess, "initializing database").Logger()
	logger.Info().Msg("initializing database")
	c = logger.WithContext(c)
	db := infra.NewDatabaseClient(c, cfg.Database)
	defer func() {
		logger.Info().Msg("shutting down database")
		db.Close()
		logger.Info().Msg("shutdown database")
	}()
	logger.Info().Msg("initialized database")

	logger = logger.With().Str(log.KeyProcess, "initializing cache").Logger()
	logger.Info().Msg("initializing cache")
	c = logger.WithContext(c)
	cache := infra.NewCacheClient(c, cfg.Cache)
	defer func() {
		logger.Info().Msg("shutting down cache")
		if err := cache.Close(); err != nil {
			err = fmt.Errorf("failed shutting down cache with error=%w", err)
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return
		}
		logger.Info().Msg("shutdown cache")
	}()
	logger.Info().Msg("initialized cache")

	logger = logger.With().Str(log.KeyProcess, "loading catalog").Logger()
	logger.Info().Msg("loading catalog")
	c = logger.WithContext(c)
	index, err := catalog.Load(c, cfg.Catalog.Path)
	if err != nil {
		err = fmt.Errorf("failed loading catalog with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	logger.Info().Msg("loaded catalog")

	logger = logger.With().Str(log.KeyProcess, "initializing cart store").Logger()
	logger.Info().Msg("initializing cart store")
	c = logger.WithContext(c)
	store := cart.NewStore(c, index, cart.NewRedisKV(cache))
	logger.Info().Int(log.KeyCartCount, store.CartCount()).Msg("initialized cart store")

	logger = logger.With().Str(log.KeyProcess, "initializing checkout orchestrator").Logger()
	logger.Info().Msg("initializing checkout orchestrator")
	identityService := identity.NewService(db, cfg.Application.SecretKey)
	orders := orderstore.NewPostgres(db)
	pricingConfig := pricing.FromAppConfig(cfg.Pricing)
	validate := validator.New(validator.WithRequiredStructEnabled())
	orchestrator := checkout.NewOrchestrator(
		store,
		pricingConfig,
		identityService,
		orders,
		validate,
		time.Now,
	)
	logger.Info().Msg("initialized checkout orchestrator")

	logger = logger.With().Str(log.KeyProcess, "initializing router").Logger()
	logger.Info().Msg("initializing router")
	router := mux.NewRouter()
	router.Use(
		otelmux.Middleware(constants.AppStorefront),
		middleware.Logging,
		middleware.RecoverPanic,
	)
	router.Handle("/metrics", promhttp.Handler())
	controller.AttachCartController(router, store, pricingConfig)
	controller.AttachCheckoutController(router, orchestrator, cfg.Checkout.DeliveryWindowDays)
	controller.AttachCatalogController(router, index)
	controller.AttachUserController(router, identityService)
	controller.AttachPinController(router, store)
	logger.Info().Msg("initialized router")

	logger = logger.With().Str(log.KeyProcess, "initializing server").Logger()
	logger.Info().Msg("initializing server")
	httpServer := http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Application.Host, cfg.Application.Port),
		BaseContext:  func(net.Listener) context.Context { return c },
		Handler:      router,
		ReadTimeout:  45 * time.Second,
		WriteTimeout: 45 * time.Second,
	}
	logger.Info().Msg("initialized server")

	go func() {
		logger := logger.With().Str(log.KeyProcess, "start server").Logger()
		logger.Info().Msgf("start listening request at %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			err = fmt.Errorf("error=%w occured while server is running", err)
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
		}
	}()

	<-c.Done()
	logger = logger.With().Str(log.KeyProcess, "shutting down http server").Logger()
	logger.Info().Msg("received interruption signal, shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		err = fmt.Errorf("failed shutting down http server with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	logger.Info().Msg("shutdown http server")
}
