package models

import (
	"time"

	"toll-system/internal/toll"

	"github.com/google/uuid"
)

// Passage представляет проезд ТС под рамкой
type Passage struct {
	ID          uuid.UUID   `json:"id" db:"id"`
	Plate       string      `json:"plate" db:"plate" validate:"required,max=16"`
	VehicleType VehicleType `json:"vehicle_type" db:"vehicle_type" validate:"omitempty,vehicle_type"`
	GantryID    string      `json:"gantry_id" db:"gantry_id" validate:"max=64"`
	PassedAt    time.Time   `json:"passed_at" db:"passed_at" validate:"required"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
}

// RecordPassageRequest представляет запрос на регистрацию проезда
type RecordPassageRequest struct {
	ID          *uuid.UUID  `json:"id,omitempty"`
	Plate       string      `json:"plate"`
	VehicleType VehicleType `json:"vehicle_type"`
	GantryID    string      `json:"gantry_id"`
	PassedAt    time.Time   `json:"passed_at"`
}

// DailyFeeRequest представляет запрос на расчёт сборов по списку проездов.
// Проезды могут относиться к разным дням: они группируются по дате.
type DailyFeeRequest struct {
	VehicleType VehicleType `json:"vehicle_type" validate:"omitempty,vehicle_type"`
	Passages    []time.Time `json:"passages"`
}

// DailyFeeResponse содержит сбор за один день с разбивкой по окнам
type DailyFeeResponse struct {
	Date    string               `json:"date"`
	Fee     int                  `json:"fee"`
	Windows []toll.BillingWindow `json:"windows"`
}

// CalculateFeesResponse содержит сборы по дням и их сумму
type CalculateFeesResponse struct {
	VehicleType VehicleType        `json:"vehicle_type"`
	Exempt      bool               `json:"exempt"`
	Days        []DailyFeeResponse `json:"days"`
	Total       int                `json:"total"`
}

// VehicleDailyFee — рассчитанный сбор ТС за день по сохранённым проездам
type VehicleDailyFee struct {
	Plate        string      `json:"plate"`
	Date         string      `json:"date"`
	VehicleType  VehicleType `json:"vehicle_type"`
	Fee          int         `json:"fee"`
	Passages     int         `json:"passages"`
	CalculatedAt time.Time   `json:"calculated_at"`
}

// VehicleFeesResponse содержит сборы ТС за период
type VehicleFeesResponse struct {
	Plate string             `json:"plate"`
	From  string             `json:"from"`
	To    string             `json:"to"`
	Days  []*VehicleDailyFee `json:"days"`
	Total int                `json:"total"`
}

// DateLayout — формат календарной даты в API и ключах кеша.
const DateLayout = "2006-01-02"
