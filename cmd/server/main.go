package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/rlammers/microblog-api/internal/config"
	"github.com/rlammers/microblog-api/internal/db"
	"github.com/rlammers/microblog-api/internal/events"
	"github.com/rlammers/microblog-api/internal/httpserver"
	"github.com/rlammers/microblog-api/internal/logging"
	"github.com/rlammers/microblog-api/internal/middleware"
	"github.com/rlammers/microblog-api/internal/repo"
	"github.com/rlammers/microblog-api/internal/search"
	"github.com/rlammers/microblog-api/internal/service"
	"github.com/rlammers/microblog-api/internal/tasks"
	"github.com/rlammers/microblog-api/internal/tokens"
)

func main() {
	cfg := config.Load()
	config.MustNonEmptyBytes(cfg.JWTSecret, "JWT_SECRET")
	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")

	logger := logging.New(cfg.LogLevel)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	gdb, err := db.Open(initCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatalf("db migrate error: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	defer rdb.Close()

	producer := events.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
	defer producer.Close()

	var postIndex *search.PostIndex
	if cfg.ESURL != "" {
		es, err := search.NewClient(cfg.ESURL, cfg.ESUser, cfg.ESPassword)
		if err != nil {
			log.Fatalf("elasticsearch init error: %v", err)
		}
		postIndex = search.NewPostIndex(es, logger)
	}

	gormRepo := &repo.GormRepo{DB: gdb}
	issuer := &tokens.Issuer{
		Secret:     cfg.JWTSecret,
		AccessTTL:  cfg.AccessTTL,
		RefreshTTL: cfg.RefreshTTL,
	}
	runner := tasks.NewRunner(gormRepo, tasks.NewProgressStore(rdb), logger)

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second
	e.Use(logging.RequestLogger(logger))

	httpserver.Register(e, &httpserver.Deps{
		Auth: &httpserver.AuthHTTP{
			Svc: &service.AuthService{Repo: gormRepo, Issuer: issuer, Events: producer},
		},
		Tasks: &httpserver.TaskHTTP{
			Svc: &service.TaskService{Repo: gormRepo, Runner: runner},
		},
		Users:    &httpserver.UserHTTP{Repo: gormRepo},
		Posts:    &httpserver.PostHTTP{Repo: gormRepo, Index: postIndex},
		Comments: &httpserver.CommentHTTP{Repo: gormRepo},
		AuthMW:   middleware.NewAuth(issuer, gormRepo),
	})

	go func() {
		addr := fmt.Sprintf(":%d", cfg.ServerPort)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("echo start: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("echo shutdown: %v", err)
	}
	runner.Wait()
}
