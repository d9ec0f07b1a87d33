package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/david3010/game_shop/internal/config"
	"github.com/david3010/game_shop/internal/es"
	"github.com/david3010/game_shop/internal/handlers"
	"github.com/david3010/game_shop/internal/logging"
	authmw "github.com/david3010/game_shop/internal/middleware/auth"
	"github.com/david3010/game_shop/internal/mykafka"
	"github.com/david3010/game_shop/internal/service/order"
	httpserver "github.com/david3010/game_shop/internal/transport/http"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	slog.SetDefault(logging.New(configuration.LOG_LEVEL))

	db, err := config.InitDB(configuration)
	if err != nil {
		log.Fatalf("database init error: %v", err)
	}

	jwtSecret := []byte(configuration.JWT_SECRET)

	prod := mykafka.NewProducer(configuration.KAFKA_ADDRESS)

	esClient, err := es.NewClient(configuration)
	if err != nil {
		log.Fatal(err)
	}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())

	deps := httpserver.Deps{
		DB:            db,
		AuthMW:        &authmw.Middleware{JWTSecret: jwtSecret},
		AuthHandler:   &handlers.AuthHandler{DB: db, JWTSecret: jwtSecret, Producer: prod},
		UserHandler:   &handlers.UserHandler{DB: db, Producer: prod},
		GameHandler:   &handlers.GameHandler{DB: db, Producer: prod},
		OrderHandler:  &handlers.OrderHandler{Svc: &order.Service{DB: db}, Producer: prod},
		SearchHandler: &handlers.SearchHandler{ES: esClient, Index: "games"},
	}

	httpserver.Register(e, &deps)

	addr := ":8080"
	if configuration.PORT != "" {
		addr = ":" + configuration.PORT
	}

	srv := &http.Server{
		Addr:         addr,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if err := prod.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("shutdown complete")
}
