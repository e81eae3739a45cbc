// @title           Meeting Scheduler API
// @version         1.0
// @description     Users and their meetings. A user never has two overlapping meetings.

// @contact.name   Ivan Chernomyrdin
// @contact.url    https://github.com/IvanChernomyrdin

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /
//
// Package main содержит точку входа сервера планировщика встреч.
//
// Пакет отвечает за инициализацию и жизненный цикл HTTP(S)-сервера, а именно:
//   - загрузку переменных окружения из файла .env (если он присутствует);
//   - загрузку конфигурации (CONFIG_PATH или ./configs/server.yaml);
//   - выбор хранилища (postgres или memory) и применение миграций;
//   - создание репозиториев, сервисов, rate limiter'а и HTTP-обработчиков;
//   - запуск сервера и корректное (graceful) завершение по сигналу.
//
// Подкоманда migrate управляет схемой БД без запуска сервера.
package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/IvanChernomyrdin/go-meeting-scheduler/internal/server/api"
	"github.com/IvanChernomyrdin/go-meeting-scheduler/internal/server/config"
	"github.com/IvanChernomyrdin/go-meeting-scheduler/internal/server/middleware"
	h "github.com/IvanChernomyrdin/go-meeting-scheduler/internal/server/net/http"
	"github.com/IvanChernomyrdin/go-meeting-scheduler/internal/server/repository"
	"github.com/IvanChernomyrdin/go-meeting-scheduler/internal/server/repository/memory"
	"github.com/IvanChernomyrdin/go-meeting-scheduler/internal/server/service"
	"github.com/IvanChernomyrdin/go-meeting-scheduler/internal/shared/logger"

	_ "github.com/IvanChernomyrdin/go-meeting-scheduler/swagger/docs"
)

const defaultConfigPath = "./configs/server.yaml"

func main() {
	root := &cobra.Command{
		Use:           "scheduler-server",
		Short:         "Meeting scheduler HTTP API server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync()
			return run(cfg, log)
		},
	}
	root.AddCommand(newMigrateCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap загружает .env, конфиг и создаёт логгер.
func bootstrap() (*config.Config, *logger.Logger, error) {
	envErr := godotenv.Load()

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = defaultConfigPath
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}

	log, err := logger.New(cfg.Log.LoggerOptions())
	if err != nil {
		return nil, nil, fmt.Errorf("не удалось создать логгер: %w", err)
	}
	if envErr != nil {
		log.Debug("no .env file loaded", zap.Error(envErr))
	}
	return cfg, log, nil
}

func run(cfg *config.Config, log *logger.Logger) error {
	// создаём контекст, который отменится по сигналу
	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer stop()

	repos, closeStore, err := openRepositories(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	limiter, closeLimiter, err := newLimiter(ctx, cfg.Security.RateLimit)
	if err != nil {
		return err
	}
	defer closeLimiter()

	// создаём сервис
	svc := service.NewServices(repos, cfg, log)
	// создаём хандлер
	handler := api.NewHandler(svc, log.Named("api"))
	// создаём роутер
	router := h.NewRouter(handler, cfg, limiter)

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		MaxHeaderBytes:    cfg.Server.MaxHeaderBytes,
	}
	if cfg.TLS.Enabled {
		server.TLSConfig = &tls.Config{MinVersion: tlsVersion(cfg.TLS.MinVersion)}
	}

	g, ctx := errgroup.WithContext(ctx)

	// запускаем сервер
	g.Go(func() error {
		log.Info("server started",
			zap.String("addr", server.Addr),
			zap.String("db_driver", cfg.DB.Driver),
			zap.Bool("tls", cfg.TLS.Enabled),
		)

		var err error
		if cfg.TLS.Enabled {
			err = server.ListenAndServeTLS(cfg.TLS.CertFile, cfg.TLS.KeyFile)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// graceful shutdown с таймаутом из конфига
	g.Go(func() error {
		<-ctx.Done()

		log.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})

	// ожидание и единая обработка ошибок
	if err := g.Wait(); err != nil {
		log.Error("server stopped with error", zap.Error(err))
		return err
	}
	log.Info("server gracefully stopped")
	return nil
}

// openRepositories создаёт репозитории выбранного драйвера.
// Возвращаемая функция закрывает соединение с БД.
func openRepositories(ctx context.Context, cfg *config.Config, log *logger.Logger) (service.Repositories, func(), error) {
	if cfg.DB.Driver == config.DriverMemory {
		store := memory.NewStore()
		log.Warn("using in-memory store, data is lost on restart")
		return service.Repositories{
			Users:    store.Users(),
			Meetings: store.Meetings(),
			Health:   store,
		}, func() {}, nil
	}

	// подключаем базу данных
	db, err := config.OpenPostgres(ctx, cfg.DB, log)
	if err != nil {
		return service.Repositories{}, nil, err
	}
	if cfg.Migrations.Enabled {
		if err := config.MigrateUp(db, cfg.Migrations.Path, log); err != nil {
			db.Close()
			return service.Repositories{}, nil, err
		}
	}

	return service.Repositories{
		Users:    repository.NewUsersRepository(db),
		Meetings: repository.NewMeetingsRepository(db),
		Health:   repository.NewHealthRepository(db),
	}, func() { db.Close() }, nil
}

// newLimiter создаёт rate limiter по настройкам; nil, если лимит выключен.
func newLimiter(ctx context.Context, cfg config.RateLimitConfig) (middleware.Limiter, func(), error) {
	if !cfg.Enabled {
		return nil, func() {}, nil
	}

	if cfg.Store == config.StoreRedis {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, nil, fmt.Errorf("redis недоступен: %w", err)
		}
		return middleware.NewRedisLimiter(rdb, cfg.Burst, cfg.Window), func() { rdb.Close() }, nil
	}

	return middleware.NewLocalLimiter(ctx, cfg.RPS, cfg.Burst, 0), func() {}, nil
}

func tlsVersion(v string) uint16 {
	if v == "1.3" {
		return tls.VersionTLS13
	}
	return tls.VersionTLS12
}
