package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/logger"
	"prizedraw/internal/config"
	"prizedraw/internal/handlers"
	"prizedraw/internal/metrics"
	"prizedraw/internal/services"
)

func main() {
	// 1. Load configuration from the environment
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// 2. Initialize logging
	defer logger.Init("prizedraw", cfg.Verbose, false, io.Discard).Close()

	// 3. Initialize the Lottery Service
	collector := metrics.NewCollector("lottery")
	lotteryService := services.NewLotteryService(cfg, collector)
	logger.Infof("Draw session ready: countdown %d ticks every %s, seed %d", cfg.CountdownTicks, cfg.TickInterval, lotteryService.Seed())

	// 4. Initialize the HTTP Handler and the Gin router
	gin.SetMode(cfg.GinMode)
	r := gin.New()
	r.Use(gin.Recovery())
	handlers.NewHTTPHandler(lotteryService, collector).RegisterRoutes(r)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Start the countdown clock that drives armed draws
	go lotteryService.RunClock(ctx, cfg.TickInterval)

	// 6. Run the server until interrupted
	srv := &http.Server{Addr: cfg.Addr, Handler: r}
	go func() {
		logger.Infof("Server starting on %s", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Failed to run server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server shutdown: %v", err)
	}
}
