package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mateusmacedo/go-ticket-booking/internal/booking/application"
	"github.com/mateusmacedo/go-ticket-booking/internal/booking/domain"
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
	flags := config.Flags("booking")
	if err := flags.Parse(os.Args[1:]); err != nil {
		return err
	}
	cfg, err := config.Load(flags)
	if err != nil {
		return err
	}

	// The terminal belongs to the prompts; logs only go to stdout when asked for.
	if cfg.App.LogPath == "" && !cfg.App.Debug {
		cfg.App.LogLevel = "error"
	}
	appLogger, err := bootstrap.NewLogger("booking-cli", cfg.App)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rt, err := bootstrap.New(ctx, cfg, appLogger)
	if err != nil {
		return err
	}
	defer rt.Close()

	trains := application.NewBookingService[domain.Train](domain.TrainKind{}, rt.Trains, rt.Events, appLogger)
	vehicles := application.NewBookingService[domain.Vehicle](domain.VehicleKind{}, rt.Vehicles, rt.Events, appLogger)

	return newDesk(os.Stdin, os.Stdout, trains, vehicles, appLogger).run(ctx, rt.Trains, rt.Vehicles)
}
