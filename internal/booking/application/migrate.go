package application

import (
	"context"

	"github.com/mateusmacedo/go-ticket-booking/internal/booking/domain"
	pkgApp "github.com/mateusmacedo/go-ticket-booking/pkg/application"
)

// MigrateVehicles appends a train copy of every vehicle record to trains and
// returns how many were copied. The vehicle store is left as is.
func MigrateVehicles(ctx context.Context, vehicles domain.Store[domain.Vehicle], trains domain.Store[domain.Train], logger pkgApp.AppLogger) (int, error) {
	source, err := vehicles.Load(ctx)
	if err != nil {
		pkgApp.LogError(ctx, logger, "failed to load vehicles for migration", err, nil)
		return 0, err
	}
	if len(source) == 0 {
		return 0, nil
	}

	err = trains.Update(ctx, func(records []domain.Train) ([]domain.Train, bool, error) {
		for _, vehicle := range source {
			records = append(records, domain.VehicleToTrain(vehicle))
		}
		return records, true, nil
	})
	if err != nil {
		pkgApp.LogError(ctx, logger, "failed to store migrated trains", err, map[string]interface{}{
			"vehicles": len(source),
		})
		return 0, err
	}

	pkgApp.LogInfo(ctx, logger, "vehicles migrated to trains", map[string]interface{}{
		"vehicles": len(source),
	})
	return len(source), nil
}
