package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/jntcloudcod2019/challenge-fiap-api/api/swagger"
	"github.com/jntcloudcod2019/challenge-fiap-api/internal/handler"
	"github.com/jntcloudcod2019/challenge-fiap-api/internal/middleware"
	"github.com/jntcloudcod2019/challenge-fiap-api/internal/repository"
	"github.com/jntcloudcod2019/challenge-fiap-api/internal/service"
	"github.com/jntcloudcod2019/challenge-fiap-api/pkg/cache"
	"github.com/jntcloudcod2019/challenge-fiap-api/pkg/config"
	"github.com/jntcloudcod2019/challenge-fiap-api/pkg/database"
	"github.com/jntcloudcod2019/challenge-fiap-api/pkg/logger"
	corsmiddleware "github.com/jntcloudcod2019/challenge-fiap-api/pkg/middleware/cors"
	reqidmiddleware "github.com/jntcloudcod2019/challenge-fiap-api/pkg/middleware/requestid"
	appValidator "github.com/jntcloudcod2019/challenge-fiap-api/pkg/validator"
)

const shutdownTimeout = 10 * time.Second

// @title Challenge FIAP School API
// @version 1.0.0
// @description Users, classes, students and enrollments with JWT role-based access
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if err := run(cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logr *zap.Logger) error {
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		err := database.NewMigrator(db, logr).Up(ctx)
		cancel()
		if err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, login throttling disabled", zap.Error(err))
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	metrics := service.NewMetricsService()
	if err := metrics.RegisterDB(db.DB, cfg.Database.Name); err != nil {
		logr.Warn("db stats collector not registered", zap.Error(err))
	}

	validate := appValidator.New()
	hasher := service.NewBcryptHasher(cfg.Security.BcryptCost)

	userRepo := repository.NewUserRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	classRepo := repository.NewClassRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)

	throttle := service.NewLoginThrottle(repository.NewAttemptRepository(redisClient), cfg.Security.LoginMaxAttempts, cfg.Security.LoginAttemptWindow, logr)
	authService := service.NewAuthService(userRepo, throttle, hasher, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
		Audience:          cfg.JWT.Audience,
	})
	authService.SetLoginObserver(metrics)

	userService := service.NewUserService(userRepo, studentRepo, hasher, validate, logr)
	classService := service.NewClassService(classRepo, validate, logr)
	studentService := service.NewStudentService(studentRepo, userRepo, service.NewPasswordGenerator(cfg.Security.PasswordSeed), hasher, validate, logr)
	enrollmentService := service.NewEnrollmentService(enrollmentRepo, studentRepo, classRepo, validate, logr, service.EnrollmentConfig{
		EnforceCapacity: cfg.Enrollment.EnforceCapacity,
	})
	exportService := service.NewExportService(classRepo, enrollmentRepo, logr)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	ops := handler.NewMetricsHandler(metrics.Handler(), db)
	r.GET("/health", ops.Health)
	r.GET("/ready", ops.Ready)
	r.GET("/metrics", ops.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.RegisterRoutes(r.Group(cfg.APIPrefix), authService, handler.Handlers{
		Auth:        handler.NewAuthHandler(authService),
		Users:       handler.NewUserHandler(userService),
		Classes:     handler.NewClassHandler(classService, exportService),
		Students:    handler.NewStudentHandler(studentService),
		Enrollments: handler.NewEnrollmentHandler(enrollmentService),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logr.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(ctx)
}
