package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mateusmacedo/go-ticket-booking/internal/booking"
	"github.com/mateusmacedo/go-ticket-booking/internal/booking/domain"
	"github.com/mateusmacedo/go-ticket-booking/internal/booking/infrastructure"
	"github.com/mateusmacedo/go-ticket-booking/internal/bootstrap"
	"github.com/mateusmacedo/go-ticket-booking/internal/config"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	flags := config.Flags("booking-server")
	if err := flags.Parse(os.Args[1:]); err != nil {
		return err
	}
	cfg, err := config.Load(flags)
	if err != nil {
		return err
	}

	appLogger, err := bootstrap.NewLogger("booking-server", cfg.App)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rt, err := bootstrap.New(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Error(ctx, "failed to initialise runtime", map[string]interface{}{"error": err.Error()})
		return err
	}
	defer func() {
		if err := rt.Close(); err != nil {
			appLogger.Error(context.Background(), "failed to release runtime", map[string]interface{}{"error": err.Error()})
		}
	}()

	booking.RegisterAuditHandler(rt.Events, appLogger)
	trainSlice := booking.NewBookingSlice[domain.Train](domain.TrainKind{}, rt.Trains, rt.Events, appLogger)
	vehicleSlice := booking.NewBookingSlice[domain.Vehicle](domain.VehicleKind{}, rt.Vehicles, rt.Events, appLogger)

	router := chi.NewRouter()
	router.Use(infrastructure.RequestID)
	router.Use(middleware.Recoverer)

	trainSlice.RegisterRoutes(router)
	vehicleSlice.RegisterRoutes(router)

	server := &http.Server{
		Addr:              cfg.App.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		appLogger.Info(ctx, "server starting", map[string]interface{}{"addr": cfg.App.HTTPAddr})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			appLogger.Error(ctx, "server failed", map[string]interface{}{"error": err.Error()})
			return err
		}
	case <-ctx.Done():
		appLogger.Info(context.Background(), "shutting down server", nil)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error(context.Background(), "failed to shut down server", map[string]interface{}{"error": err.Error()})
		return err
	}

	appLogger.Info(context.Background(), "server stopped", nil)
	return nil
}
