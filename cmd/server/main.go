package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	glog "github.com/labstack/gommon/log"

	"github.com/iliyamo/swim-club-backend/internal/config"
	"github.com/iliyamo/swim-club-backend/internal/database"
	"github.com/iliyamo/swim-club-backend/internal/handler"
	"github.com/iliyamo/swim-club-backend/internal/middleware"
	"github.com/iliyamo/swim-club-backend/internal/queue"
	"github.com/iliyamo/swim-club-backend/internal/repository"
	"github.com/iliyamo/swim-club-backend/internal/repository/memory"
	"github.com/iliyamo/swim-club-backend/internal/router"
	"github.com/iliyamo/swim-club-backend/internal/service"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	defer closeStore()

	cacheCfg := config.LoadCacheConfig()
	rlCfg := config.LoadRateLimitConfig()
	queueCfg := config.LoadQueueConfig()
	rdb := config.NewRedisClient(config.LoadRedisConfig())
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}

	deps := service.Deps{Store: store, Now: time.Now, Location: cfg.Location}
	if pub := queue.NewPublisher(queueCfg); pub != nil {
		deps.Events = pub
	}

	users := service.NewUserService(deps, service.AuthConfig{
		JWTSecret:  cfg.JWTSecret,
		AccessTTL:  time.Duration(cfg.AccessTTLMin) * time.Minute,
		RefreshTTL: time.Duration(cfg.RefreshTTLDays) * 24 * time.Hour,
		BcryptCost: cfg.BcryptCost,
	})
	reporting := service.NewReportingService(deps)
	invalidateSkills := func(ctx context.Context) error {
		return middleware.InvalidateCache(ctx, cacheCfg, rdb)
	}

	h := router.Handlers{
		Auth:       handler.NewAuthHandler(users, cfg.JWTSecret),
		Users:      handler.NewUserHandler(users),
		Schedules:  handler.NewScheduleHandler(service.NewScheduleService(deps), service.NewEnrollmentService(deps)),
		Attendance: handler.NewAttendanceHandler(service.NewAttendanceService(deps)),
		Members:    handler.NewMemberHandler(service.NewMemberService(deps)),
		Skills:     handler.NewSkillHandler(service.NewSkillService(deps), invalidateSkills),
		Messages:   handler.NewMessageHandler(service.NewMessageService(deps)),
		Payments:   handler.NewPaymentHandler(service.NewPaymentService(deps), reporting),
		Dashboard:  handler.NewDashboardHandler(reporting),
	}

	e := echo.New()
	e.HideBanner = true
	e.Logger.SetLevel(logLevel(cfg.LogLevel))
	e.Validator = handler.Validator{}
	e.HTTPErrorHandler = handler.HTTPErrorHandler

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			if v.Error != nil {
				c.Logger().Errorf("%s %s %d %s id=%s err=%v", v.Method, v.URI, v.Status, v.Latency, v.RequestID, v.Error)
				return nil
			}
			c.Logger().Infof("%s %s %d %s id=%s", v.Method, v.URI, v.Status, v.Latency, v.RequestID)
			return nil
		},
	}))
	e.Use(middleware.NewTokenBucket(rlCfg, rdb))

	router.Register(e, h, cfg.JWTSecret, middleware.NewRedisCache(cacheCfg, rdb))

	if queueCfg.ConsumerEnabled {
		go func() {
			if err := queue.StartActivityConsumer(ctx, queueCfg); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("activity-consumer: %v", err)
			}
		}()
	}

	addr := ":" + cfg.Port
	go func() {
		log.Printf("listening on %s (env=%s, store=%s)", addr, cfg.Env, cfg.StoreDriver)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

// openStore returns the record store selected by STORE_DRIVER and a function
// that releases it.
func openStore(ctx context.Context, cfg config.Config) (repository.Store, func(), error) {
	if cfg.StoreDriver == config.StoreMemory {
		log.Printf("store: using in-memory records; data is lost on exit")
		return memory.NewStore(), func() {}, nil
	}
	db, err := database.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	if cfg.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
	}
	return repository.NewMySQLStore(db), func() { _ = db.Close() }, nil
}

func logLevel(s string) glog.Lvl {
	switch strings.ToLower(s) {
	case "debug":
		return glog.DEBUG
	case "warn":
		return glog.WARN
	case "error":
		return glog.ERROR
	default:
		return glog.INFO
	}
}
