package handlers

import (
	"encoding/json"
	"net/http"

	"toll-system/internal/logger"
	"toll-system/internal/models"
)

const vehiclesPathPrefix = "/api/vehicles/"

// TollHandler обрабатывает запросы расчёта сборов и регистрации проездов.
type TollHandler struct {
	tollService TollService
	log         *logger.Logger
}

// NewTollHandler создаёт новый обработчик сборов.
func NewTollHandler(tollService TollService, log *logger.Logger) *TollHandler {
	return &TollHandler{
		tollService: tollService,
		log:         log,
	}
}

// CalculateDailyFee считает сборы по переданному списку проездов.
func (h *TollHandler) CalculateDailyFee(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req models.DailyFeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.tollService.CalculateFees(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to calculate fees")
		return
	}

	writeJSONResponse(w, http.StatusOK, resp)
}

// RecordPassage регистрирует проезд под рамкой.
func (h *TollHandler) RecordPassage(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req models.RecordPassageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	passage, err := h.tollService.RecordPassage(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to record passage")
		return
	}

	writeJSONResponse(w, http.StatusCreated, passage)
}

// GetVehicleDailyFee возвращает сбор ТС за дату ?date=YYYY-MM-DD.
func (h *TollHandler) GetVehicleDailyFee(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	plate, err := extractPlateFromPath(r.URL.Path, vehiclesPathPrefix)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	date, err := parseDate(r, "date")
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	fee, err := h.tollService.VehicleDailyFee(r.Context(), plate, date)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to get daily fee")
		return
	}

	writeJSONResponse(w, http.StatusOK, fee)
}

// GetVehicleFees возвращает сборы ТС за период ?from=&to=.
func (h *TollHandler) GetVehicleFees(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	plate, err := extractPlateFromPath(r.URL.Path, vehiclesPathPrefix)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	from, err := parseDate(r, "from")
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	to, err := parseDate(r, "to")
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	fees, err := h.tollService.VehicleFees(r.Context(), plate, from, to)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to get vehicle fees")
		return
	}

	writeJSONResponse(w, http.StatusOK, fees)
}

// GetSchedule возвращает тарифные окна.
func (h *TollHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"windows": h.tollService.Schedule(),
	})
}
