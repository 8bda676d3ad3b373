package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"toll-system/internal/models"
)

// ErrorResponse представляет структуру ответа с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// writeJSONResponse отправляет JSON ответ
func writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// writeErrorResponse отправляет ответ с ошибкой
func writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	response := ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	}
	writeJSONResponse(w, statusCode, response)
}

// allowMethod отвечает 405, если метод запроса не совпадает с ожидаемым.
func allowMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
	return false
}

// extractPlateFromPath извлекает номер ТС из пути вида /api/vehicles/{plate}/...
func extractPlateFromPath(path, prefix string) (string, error) {
	if !strings.HasPrefix(path, prefix) {
		return "", fmt.Errorf("invalid path format")
	}

	parts := strings.Split(strings.TrimPrefix(path, prefix), "/")
	plate := models.NormalizePlate(parts[0])
	if plate == "" {
		return "", fmt.Errorf("missing plate in path")
	}

	return plate, nil
}

// parseDate разбирает дату в формате YYYY-MM-DD из query-параметра
func parseDate(r *http.Request, param string) (time.Time, error) {
	value := r.URL.Query().Get(param)
	if value == "" {
		return time.Time{}, fmt.Errorf("%s is required", param)
	}

	date, err := time.Parse(models.DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be in YYYY-MM-DD format", param)
	}
	return date, nil
}
