package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jabenlo/pstep-bank-store/internal/config"
	"github.com/jabenlo/pstep-bank-store/internal/handlers"
	"github.com/jabenlo/pstep-bank-store/internal/repository"
	"github.com/jabenlo/pstep-bank-store/internal/services"
	"github.com/jabenlo/pstep-bank-store/internal/session"
	"github.com/jabenlo/pstep-bank-store/internal/uploads"
	xhttp "github.com/jabenlo/pstep-bank-store/pkg/http"
	"github.com/jabenlo/pstep-bank-store/pkg/logger"
	"github.com/jabenlo/pstep-bank-store/pkg/pg"
	"github.com/jabenlo/pstep-bank-store/pkg/prom"
	"github.com/jabenlo/pstep-bank-store/pkg/redis"
)

func main() {
	err := config.Load(argContainsEnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return
	}

	s := xhttp.NewServer(xhttp.DefaultServerOption)
	s.Use(xhttp.CompressMiddleware(6))
	s.Use(xhttp.TimeoutMiddleware(time.Second * 5))
	s.Use(xhttp.RequestLoggerMiddleware)
	s.Use(xhttp.RecoverMiddleware)
	s.Router = xhttp.CreateDefaultRouter()

	readConf := pg.Config{
		User:     config.Get().PostgresReadUser,
		Host:     config.Get().PostgresReadHost,
		Port:     config.Get().PostgresReadPort,
		Password: config.Get().PostgresReadPassword,
		Database: config.Get().PostgresReadDatabase,
	}
	writeConf := pg.Config{
		User:     config.Get().PostgresWriteUser,
		Host:     config.Get().PostgresWriteHost,
		Port:     config.Get().PostgresWritePort,
		Password: config.Get().PostgresWritePassword,
		Database: config.Get().PostgresWriteDatabase,
	}

	pgDebug := false
	if config.Get().AppEnv == "dev" {
		pgDebug = true
	}
	db, err := pg.CreateReadWrite(readConf, writeConf, pgDebug)
	if err != nil {
		logger.Error("failed connecting to pg", "error", err)
		return
	}

	redisAdap, err := redis.NewRedisAdapter("default", config.Get().RedisUniversalKeyPrefix, &redis.Options{
		Addrs:      []string{config.Get().RedisAddr},
		ClientName: "default",
		DB:         config.Get().RedisDatabase,
		Username:   config.Get().RedisUsername,
		Password:   config.Get().RedisPassword,
	})
	if err != nil {
		logger.Error("failed connecting to redis", "error", err)
		return
	}

	images, err := uploads.NewStore(config.Get().UploadDir)
	if err != nil {
		logger.Error("failed preparing upload directory", "error", err)
		return
	}

	sessions := session.NewStore(redisAdap, config.Get().TeacherSessionTTL, config.Get().StudentSessionTTL)
	auth := handlers.NewSessionAuth(sessions, config.Get().SessionCookieName)

	userRepo := repository.NewUserRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	itemRepo := repository.NewItemRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	purchaseRepo := repository.NewPurchaseRepository(db)

	// services
	authService := services.NewAuthService(userRepo, studentRepo)
	rosterService := services.NewRosterService(db, studentRepo, transactionRepo, purchaseRepo)
	storeService := services.NewStoreService(itemRepo, images)
	studentService := services.NewStudentService(studentRepo, itemRepo, transactionRepo, purchaseRepo)
	checkoutService := services.NewCheckoutService(db, studentRepo, itemRepo, purchaseRepo, transactionRepo)
	statementService := services.NewStatementService(studentRepo, transactionRepo, purchaseRepo)
	healthService := services.NewHealthService(db, redisAdap)

	// handlers
	authHandler := handlers.NewAuthHandler(authService, auth)
	teacherHandler := handlers.NewTeacherHandler(rosterService, storeService, statementService, auth)
	studentHandler := handlers.NewStudentHandler(studentService, checkoutService, auth)
	uploadsHandler := handlers.NewUploadsHandler(images)
	healthHandler := handlers.NewHealthHandler(healthService)

	handlers.RegisterAuthRoutes(s.Router.Group("/api"), authHandler)
	handlers.RegisterTeacherRoutes(s.Router.Group("/api/teacher"), teacherHandler)
	handlers.RegisterStudentRoutes(s.Router.Group("/api/student"), studentHandler)
	handlers.RegisterUploadRoutes(s.Router, uploadsHandler)
	handlers.RegisterHealthRoutes(s.Router, healthHandler)

	if config.Get().MetricsAddr != "" {
		host, _ := os.Hostname()
		if err := prom.Create(host, config.Get().AppEnv, config.Get().PromNamespace); err != nil {
			logger.Error("failed registering metrics", "error", err)
			return
		}
		go prom.ListenAndServe(config.Get().MetricsAddr, config.Get().MetricsURI)
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		var err = s.ListenAndServe(config.Get().HttpListenAddr)
		if err != nil {
			logger.Error("error in running http-server", "error", err)
		}
	}()

	<-c
	s.Shutdown()
}

func argContainsEnvPath() string {
	for _, v := range os.Args {
		if strings.Contains(v, "--env=") {
			s := strings.Split(v, "=")
			if _, err := os.Open(s[1]); err != nil {
				logger.Error("failed to open the passed env file, got error" + err.Error())
				return ""
			}
			return s[1]
		}
	}
	return ""
}
