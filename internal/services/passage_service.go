package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"toll-system/internal/apperror"
	"toll-system/internal/database"
	"toll-system/internal/logger"
	"toll-system/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// uniqueViolation — код ошибки Postgres для нарушения уникального индекса.
const uniqueViolation = "23505"

// PassageService хранит проезды ТС в Postgres.
// Время проезда хранится как локальное время рамки (TIMESTAMP без зоны).
type PassageService struct {
	db  *database.DB
	log *logger.Logger
}

// NewPassageService создаёт сервис проездов.
func NewPassageService(db *database.DB, log *logger.Logger) *PassageService {
	return &PassageService{
		db:  db,
		log: log,
	}
}

// RecordPassage сохраняет проезд. Повторная запись с тем же ID игнорируется,
// тот же проезд под другим ID возвращает Conflict.
func (s *PassageService) RecordPassage(ctx context.Context, req *models.RecordPassageRequest) (*models.Passage, error) {
	if req == nil {
		return nil, apperror.Validation("passage is required", nil)
	}

	passage := &models.Passage{
		ID:          uuid.New(),
		Plate:       models.NormalizePlate(req.Plate),
		VehicleType: req.VehicleType,
		GantryID:    strings.TrimSpace(req.GantryID),
		PassedAt:    req.PassedAt,
		CreatedAt:   time.Now(),
	}
	if req.ID != nil {
		passage.ID = *req.ID
	}
	if err := validate.Struct(passage); err != nil {
		return nil, apperror.Validation(validationMessage(err), err)
	}

	query := `
		INSERT INTO passages (id, plate, vehicle_type, gantry_id, passed_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING
	`

	result, err := s.db.ExecContext(ctx, query, passage.ID, passage.Plate, passage.VehicleType,
		passage.GantryID, passage.PassedAt, passage.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, apperror.Conflict("passage already recorded at this gantry", err)
		}
		return nil, fmt.Errorf("failed to record passage: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		s.log.WithField("passage_id", passage.ID).Debug("Duplicate passage ignored")
		return passage, nil
	}

	s.log.WithFields(map[string]interface{}{
		"passage_id": passage.ID,
		"plate":      passage.Plate,
		"gantry_id":  passage.GantryID,
		"passed_at":  passage.PassedAt,
	}).Info("Passage recorded")

	return passage, nil
}

// ListPassagesForDay возвращает проезды ТС за календарный день, отсортированные по времени.
func (s *PassageService) ListPassagesForDay(ctx context.Context, plate string, day time.Time) ([]*models.Passage, error) {
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)

	query := `
		SELECT id, plate, vehicle_type, gantry_id, passed_at, created_at
		FROM passages
		WHERE plate = $1 AND passed_at >= $2 AND passed_at < $3
		ORDER BY passed_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, models.NormalizePlate(plate), from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list passages: %w", err)
	}
	defer rows.Close()

	var passages []*models.Passage
	for rows.Next() {
		p := &models.Passage{}
		if err := rows.Scan(&p.ID, &p.Plate, &p.VehicleType, &p.GantryID, &p.PassedAt, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan passage: %w", err)
		}
		passages = append(passages, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate passages: %w", err)
	}

	return passages, nil
}
