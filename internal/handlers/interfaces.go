package handlers

import (
	"context"
	"time"

	"toll-system/internal/models"
	"toll-system/internal/toll"
)

// ----- Tolls -----

type TollService interface {
	CalculateFees(ctx context.Context, req *models.DailyFeeRequest) (*models.CalculateFeesResponse, error)
	RecordPassage(ctx context.Context, req *models.RecordPassageRequest) (*models.Passage, error)
	VehicleDailyFee(ctx context.Context, plate string, day time.Time) (*models.VehicleDailyFee, error)
	VehicleFees(ctx context.Context, plate string, from, to time.Time) (*models.VehicleFeesResponse, error)
	Schedule() []toll.FeeWindow
}

// ----- Health -----

type DBHealth interface {
	Health() error
}

type RedisHealth interface {
	Health(ctx context.Context) error
}
