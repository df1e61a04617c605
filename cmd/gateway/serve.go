package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"OrderDeskPlatform/internal/assistant"
	"OrderDeskPlatform/internal/chat"
	"OrderDeskPlatform/internal/credential"
	"OrderDeskPlatform/internal/events"
	httphandler "OrderDeskPlatform/internal/handler/http"
	"OrderDeskPlatform/internal/middleware"
	"OrderDeskPlatform/internal/ordercache"
	"OrderDeskPlatform/internal/orders"
	"OrderDeskPlatform/internal/orders/suiteql"
	"OrderDeskPlatform/internal/session"
	"OrderDeskPlatform/pkg/config"
	"OrderDeskPlatform/pkg/database"
	"OrderDeskPlatform/pkg/health"
	"OrderDeskPlatform/pkg/logger"
	"OrderDeskPlatform/pkg/metrics"
	"OrderDeskPlatform/pkg/rabbitmq"
	"OrderDeskPlatform/pkg/ratelimit"
	pkgredis "OrderDeskPlatform/pkg/redis"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Запустить HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return serve(cmd.Context(), cfg)
	},
}

func init() {
	serveCmd.Flags().String("host", "", "listen host (overrides server.host)")
	serveCmd.Flags().Int("port", 0, "listen port (overrides server.port)")
	viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
}

// loadConfig конфигурация из файла и окружения; флаги командной строки важнее
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(viper.GetString("config"))
	if err != nil {
		return nil, err
	}
	applyFlags(cfg)
	return cfg, nil
}

func applyFlags(cfg *config.Config) {
	if viper.IsSet("server.host") {
		if host := viper.GetString("server.host"); host != "" {
			cfg.Server.Host = host
		}
	}
	if viper.IsSet("server.port") {
		if port := viper.GetInt("server.port"); port > 0 {
			cfg.Server.Port = port
		}
	}
}

// closer освобождает ресурс при остановке
type closer func()

func serve(parent context.Context, cfg *config.Config) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	appLogger, err := logger.NewLogger(cfg.Environment, cfg.Logger.Level, cfg.Logger.Format, serviceName)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer appLogger.Sync()

	var closers []closer
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}()

	metricCollector := metrics.NewMetrics("orderdesk")
	shutdownTracing := metrics.InitializeOpenTelemetry(serviceName, version)
	closers = append(closers, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			appLogger.Warn("Tracer shutdown failed", logger.Error(err))
		}
	})

	checker := health.NewDependencyChecker(version, 2*time.Second)

	// Хранилище клиентов
	store, closeStore, err := newCredentialStore(ctx, cfg, checker, appLogger)
	if err != nil {
		return err
	}
	closers = append(closers, closeStore)

	tokenTTL, _ := cfg.Session.TTL()
	sessions, err := session.NewManager(cfg.Session.Secret, cfg.Session.Algorithm, tokenTTL, store)
	if err != nil {
		return fmt.Errorf("create session manager: %w", err)
	}

	// ERP
	netsuiteTimeout, _ := cfg.NetSuite.RequestTimeout()
	suiteqlClient, err := suiteql.NewClient(suiteql.Config{
		AccountID:      cfg.NetSuite.AccountID,
		ConsumerKey:    cfg.NetSuite.ConsumerKey,
		ConsumerSecret: cfg.NetSuite.ConsumerSecret,
		TokenKey:       cfg.NetSuite.TokenKey,
		TokenSecret:    cfg.NetSuite.TokenSecret,
		Realm:          cfg.NetSuite.Realm,
		BaseURL:        cfg.NetSuite.BaseURL,
		Timeout:        netsuiteTimeout,
	}, metricCollector)
	if err != nil {
		return fmt.Errorf("create suiteql client: %w", err)
	}
	orderService := orders.NewService(suiteql.NewSource(suiteqlClient, appLogger), appLogger)

	cacheTTL, _ := cfg.Cache.EntryTTL()
	orderCache := ordercache.New(orderService, cacheTTL, appLogger, ordercache.WithRecorder(metricCollector))

	// Ассистент
	assistantTimeout, _ := cfg.Assistant.RequestTimeout()
	gateway, err := assistant.NewClaude(assistant.Config{
		APIKey:       cfg.Assistant.APIKey,
		Model:        cfg.Assistant.Model,
		MaxTokens:    cfg.Assistant.MaxTokens,
		Temperature:  cfg.Assistant.Temperature,
		TopP:         cfg.Assistant.TopP,
		Timeout:      assistantTimeout,
		SupportPhone: cfg.Assistant.SupportPhone,
		SupportEmail: cfg.Assistant.SupportEmail,
		SupportHours: cfg.Assistant.SupportHours,
	}, metricCollector)
	if err != nil {
		return fmt.Errorf("create assistant: %w", err)
	}

	selector := chat.NewSelector(orderCache, orderService, cfg.Cache.RecentOrdersPageSize, appLogger)
	chatService := chat.NewService(selector, gateway, appLogger)

	// События сессий
	publisher, closeEvents, err := newEventPublisher(ctx, cfg, checker, appLogger)
	if err != nil {
		return err
	}
	closers = append(closers, closeEvents)

	handler := httphandler.NewHandler(httphandler.Deps{
		Sessions:       sessions,
		Credentials:    store,
		Orders:         orderService,
		Cache:          orderCache,
		Chat:           chatService,
		Events:         publisher,
		Health:         checker,
		Metrics:        metricCollector,
		MetricsHandler: metricCollector.GetHandler(),
		Cookie: httphandler.CookieConfig{
			Name:   cfg.Session.CookieName,
			Secure: cfg.Session.CookieSecure,
			MaxAge: cfg.Session.CookieMaxAgeSecs,
		},
		Log: appLogger,
	})

	chain := []func(http.Handler) http.Handler{
		middleware.Recovery(appLogger),
		middleware.Logging(appLogger),
		middleware.CORS(cfg.CORS.AllowedOrigins, appLogger),
	}
	if cfg.RateLimiting.Enabled {
		limiter, closeRedis, err := newRateLimiter(ctx, cfg, checker, appLogger)
		if err != nil {
			return err
		}
		closers = append(closers, closeRedis)
		chain = append(chain, middleware.RateLimit(limiter, cfg.RateLimiting.RequestsPerMinute, time.Minute, appLogger))
	}

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           middleware.Chain(handler, chain...),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		appLogger.Info("Starting gateway",
			logger.String("addr", server.Addr),
			logger.String("environment", cfg.Environment))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		appLogger.Info("Shutting down gateway")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout())
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		appLogger.Error("Gateway stopped with error", logger.Error(err))
		return err
	}
	appLogger.Info("Gateway stopped")
	return nil
}

// newCredentialStore выбирает хранилище клиентов по credentials.source
func newCredentialStore(ctx context.Context, cfg *config.Config, checker *health.DependencyChecker, log logger.Logger) (credential.Store, closer, error) {
	switch cfg.Credentials.Source {
	case "postgres":
		db, err := database.Connect(ctx, database.FromAppConfig(cfg.Database))
		if err != nil {
			return nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}
		checker.Register("postgres", db.HealthCheck)
		log.Info("Using PostgreSQL credential store",
			logger.String("table", cfg.Credentials.Table))
		return credential.NewPostgresStore(db.Pool, cfg.Credentials.Table, cfg.Credentials.Column), db.Close, nil
	default:
		store := credential.NewCSVStore(cfg.Credentials.CSVPath, cfg.Credentials.CSVColumn)
		checker.Register("credentials", store.Ping)
		if err := store.Ping(ctx); err != nil {
			log.Warn("Customer file is not readable yet", logger.Error(err))
		}
		log.Info("Using CSV credential store", logger.String("path", cfg.Credentials.CSVPath))
		return store, func() {}, nil
	}
}

// newEventPublisher публикатор событий сессий; без RabbitMQ события отбрасываются
func newEventPublisher(ctx context.Context, cfg *config.Config, checker *health.DependencyChecker, log logger.Logger) (events.Publisher, closer, error) {
	if !cfg.RabbitMQ.Enabled {
		return events.Noop{}, func() {}, nil
	}

	mqConfig := rabbitmq.FromAppConfig(cfg.RabbitMQ)
	conn, err := rabbitmq.Connect(ctx, mqConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}
	checker.Register("rabbitmq", conn.HealthCheck)

	closeConn := func() {
		if err := conn.Close(); err != nil {
			log.Warn("RabbitMQ close failed", logger.Error(err))
		}
	}
	return events.NewSessionPublisher(rabbitmq.NewProducer(conn, mqConfig), log), closeConn, nil
}

func newRateLimiter(ctx context.Context, cfg *config.Config, checker *health.DependencyChecker, log logger.Logger) (ratelimit.RateLimiter, closer, error) {
	client, err := pkgredis.Connect(ctx, pkgredis.FromAppConfig(cfg.Redis))
	if err != nil {
		return nil, nil, fmt.Errorf("connect to redis: %w", err)
	}
	checker.Register("redis", client.HealthCheck)

	closeClient := func() {
		if err := client.Close(); err != nil {
			log.Warn("Redis close failed", logger.Error(err))
		}
	}
	return ratelimit.NewRedisRateLimiter(client.Client), closeClient, nil
}
