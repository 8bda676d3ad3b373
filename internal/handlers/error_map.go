package handlers

import (
	"net/http"

	"toll-system/internal/apperror"
	"toll-system/internal/logger"
)

var statusByKind = map[apperror.Kind]int{
	apperror.KindNotFound:   http.StatusNotFound,
	apperror.KindValidation: http.StatusBadRequest,
	apperror.KindConflict:   http.StatusConflict,
}

func writeServiceError(w http.ResponseWriter, log *logger.Logger, err error, internalMessage string) {
	if kind, ok := apperror.KindOf(err); ok {
		if status, known := statusByKind[kind]; known {
			writeErrorResponse(w, status, err.Error())
			return
		}
	}

	if log != nil {
		log.WithError(err).Error(internalMessage)
	}
	writeErrorResponse(w, http.StatusInternalServerError, internalMessage)
}
