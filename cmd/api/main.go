package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"campuseats/pkg/api"
	"campuseats/pkg/config"
	"campuseats/pkg/logger"
	"campuseats/pkg/order"
	"campuseats/pkg/order/memory"
	"campuseats/pkg/otel"
)

// @title CampusEats API
// @version 1.0
// @description Mock campus food ordering with a simulated checkout flow
// @host localhost:8080
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New(os.Stderr, logger.LevelError, "campuseats", nil).Error(context.Background(), "load config", "error", err)
		os.Exit(1)
	}

	log := logger.New(os.Stdout, logger.ParseLevel(cfg.LogLevel), "campuseats", otel.GetTraceID)
	defer log.Sync()

	tp, shutdown, err := otel.InitTracing(log, otel.Config{ServiceName: "campuseats", Host: cfg.OtelHost, Probability: cfg.TraceProbability})
	if err != nil {
		log.Error(context.Background(), "init tracing", "error", err)
		os.Exit(1)
	}
	defer shutdown(context.Background())

	receipts := memory.New(cfg.ReceiptLimit)

	var hub *api.Hub
	session := order.NewSession(order.Options{
		Clock:    clockwork.NewRealClock(),
		Delays:   cfg.Delays(),
		Receipts: receipts,
		Log:      log,
		OnChange: func(s order.Snapshot) { hub.OnChange(s) },
	})
	hub = api.NewHub(log, session.Snapshot())

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.NewServer(session, receipts, hub, log, tp.Tracer("campuseats")).Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info(context.Background(), "listening", "addr", cfg.Addr, "tls", cfg.TLSCert != "")
		var err error
		if cfg.TLSCert != "" {
			err = srv.ListenAndServeTLS(cfg.TLSCert, cfg.TLSKey)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(context.Background(), "server closed", "error", err)
			os.Exit(1)
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	s := <-sigc
	log.Info(context.Background(), "shutdown signal", "signal", s.String())

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn(ctx, "http shutdown", "error", err)
	}
	hub.Stop()
	session.Close()
	log.Info(context.Background(), "shutdown complete")
}
