package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/sallyfoods/orderdesk/internal/config"
	"github.com/sallyfoods/orderdesk/internal/handlers"
	"github.com/sallyfoods/orderdesk/internal/logging"
	mw "github.com/sallyfoods/orderdesk/internal/middleware"
	"github.com/sallyfoods/orderdesk/internal/mykafka"
	"github.com/sallyfoods/orderdesk/internal/store"
	httpserver "github.com/sallyfoods/orderdesk/internal/transport/http"
	"github.com/sallyfoods/orderdesk/internal/view"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)

	db, err := config.InitDB(configuration)
	if err != nil {
		logger.Error("database init failed", "error", err)
		os.Exit(1)
	}

	prod := mykafka.NewProducer([]string{configuration.KAFKA_ADDRESS})
	if !prod.Enabled() {
		logger.Warn("KAFKA_ADDRESS not set, event publishing disabled")
	}

	renderer, err := view.New()
	if err != nil {
		logger.Error("template init failed", "error", err)
		os.Exit(1)
	}

	e := echo.New()
	e.Renderer = renderer
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), mw.RequestLogger(logger))

	customers := store.NewCustomerStore(db)
	items := store.NewItemStore(db)
	orders := store.NewOrderStore(db)
	production := store.NewProductionStore(db)

	deps := httpserver.Deps{
		DB:                db,
		CustomerHandler:   &handlers.CustomerHandler{Store: customers, Producer: prod},
		ProductHandler:    &handlers.ProductHandler{Store: items, Producer: prod},
		OrderHandler:      &handlers.OrderHandler{Orders: orders, Customers: customers, Items: items, Producer: prod},
		ProductionHandler: &handlers.ProductionHandler{Store: production},
	}
	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         configuration.HTTP_ADDR,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Info("listening", "addr", configuration.HTTP_ADDR)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "error", err)
		}
	} else {
		logger.Error("db handle error", "error", err)
	}

	if err := prod.Close(); err != nil {
		logger.Error("kafka close error", "error", err)
	}

	logger.Info("shutdown complete")
}
