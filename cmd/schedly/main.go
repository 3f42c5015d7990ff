package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"schedly/internal/api"
	"schedly/internal/config"
	"schedly/internal/events"
	"schedly/internal/gateway"
	"schedly/internal/logging"
	"schedly/internal/metrics"
	"schedly/internal/repository"
	"schedly/internal/service"
	"schedly/internal/session"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	if len(args) == 0 {
		printUsage(out)
		return errUsage
	}
	cmd, ok := commands[args[0]]
	if !ok {
		printUsage(out)
		return fmt.Errorf("unknown command %q", args[0])
	}

	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startMetrics(ctx, cfg, logger)

	jar, err := session.Open(cookieFile(cfg))
	if err != nil {
		return err
	}
	defer func() {
		if err := jar.Close(); err != nil {
			logger.Error().Err(err).Msg("save cookie jar")
		}
	}()

	a, cleanup, err := newApp(ctx, cfg, jar, logger, out)
	if err != nil {
		return err
	}
	defer cleanup()

	return cmd.run(ctx, a, args[1:])
}

func loadConfigAndLogger() (*config.Config, *zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, logging.Component(baseLogger, "cli"), closer, nil
}

func cookieFile(cfg *config.Config) string {
	if cfg.Session.CookieFile != "" {
		return cfg.Session.CookieFile
	}
	return session.DefaultPath()
}

// app holds everything a command needs.
type app struct {
	cfg      *config.Config
	gw       *gateway.Gateway
	auth     *service.AuthService
	booking  *service.BookingService
	catalog  *service.CatalogService
	payments *service.PaymentService
	logger   *zerolog.Logger
	out      io.Writer
	now      func() time.Time
}

func newApp(ctx context.Context, cfg *config.Config, jar http.CookieJar, logger *zerolog.Logger, out io.Writer) (*app, func(), error) {
	client := api.NewClient(cfg.API, jar, logger)

	store, storeCloser, err := repository.NewMirrorStore(ctx, cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("open mirror: %w", err)
	}
	gw := gateway.New(client, store, cfg.Cache.Namespace, logger)

	bus := events.NewEventBus()
	for _, eventType := range []string{
		events.EventAppointmentBooked,
		events.EventAppointmentStatusChanged,
		events.EventAppointmentPaid,
	} {
		bus.Subscribe(eventType, logEvent(logger))
	}

	a := &app{
		cfg:      cfg,
		gw:       gw,
		auth:     service.NewAuthService(gw, logger),
		booking:  service.NewBookingService(gw, bus, logger),
		catalog:  service.NewCatalogService(gw),
		payments: service.NewPaymentService(gw, bus, logger),
		logger:   logger,
		out:      out,
		now:      time.Now,
	}
	cleanup := func() {
		if err := storeCloser.Close(); err != nil {
			logger.Error().Err(err).Msg("close mirror")
		}
	}
	return a, cleanup, nil
}

func logEvent(logger *zerolog.Logger) events.EventHandler {
	return func(event *events.Event) error {
		var payload events.AppointmentEventPayload
		if err := event.Decode(&payload); err != nil {
			return err
		}
		logger.Debug().
			Str("event", event.Type).
			Str("appointment_id", payload.AppointmentID).
			Str("status", string(payload.Status)).
			Str("payment_status", string(payload.PaymentStatus)).
			Msg("appointment event")
		return nil
	}
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	metrics.Register()
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
