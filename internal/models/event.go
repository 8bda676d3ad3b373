package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType представляет тип события Kafka
type EventType string

const (
	EventTypePassageRecorded    EventType = "passage.recorded"
	EventTypeDailyFeeCalculated EventType = "toll.daily_fee_calculated"
)

// Event представляет событие, передаваемое через Kafka
type Event struct {
	ID        uuid.UUID       `json:"id"`
	Type      EventType       `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// PassageRecordedData — полезная нагрузка события passage.recorded
type PassageRecordedData struct {
	PassageID   uuid.UUID   `json:"passage_id"`
	Plate       string      `json:"plate"`
	VehicleType VehicleType `json:"vehicle_type"`
	GantryID    string      `json:"gantry_id"`
	PassedAt    time.Time   `json:"passed_at"`
}

// DailyFeeCalculatedData — полезная нагрузка события toll.daily_fee_calculated
type DailyFeeCalculatedData struct {
	Plate       string      `json:"plate"`
	Date        string      `json:"date"`
	VehicleType VehicleType `json:"vehicle_type"`
	Fee         int         `json:"fee"`
	Passages    int         `json:"passages"`
}
