package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"toll-system/internal/apperror"
	"toll-system/internal/config"
	"toll-system/internal/kafka"
	"toll-system/internal/logger"
	"toll-system/internal/models"
	"toll-system/internal/redis"
	"toll-system/internal/toll"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	defaultFeeCacheTTL    = time.Hour
	defaultMaxRangeDays   = 31
	rangeFetchConcurrency = 4
)

type passageStore interface {
	RecordPassage(ctx context.Context, req *models.RecordPassageRequest) (*models.Passage, error)
	ListPassagesForDay(ctx context.Context, plate string, day time.Time) ([]*models.Passage, error)
}

type feeCache interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, key string) error
}

type feePublisher interface {
	PublishDailyFeeCalculated(fee *models.VehicleDailyFee) error
}

// TollService рассчитывает сборы: по переданным проездам или по сохранённым в БД.
type TollService struct {
	aggregator   *toll.Aggregator
	passages     passageStore
	cache        feeCache
	publisher    feePublisher
	log          *logger.Logger
	cacheTTL     time.Duration
	maxRangeDays int
}

// NewTollService создаёт сервис сборов. Кеш и продюсер необязательны.
func NewTollService(aggregator *toll.Aggregator, passages *PassageService, cache *redis.Client, producer *kafka.Producer, log *logger.Logger, cfg *config.TollConfig) *TollService {
	s := &TollService{
		aggregator:   aggregator,
		log:          log,
		cacheTTL:     defaultFeeCacheTTL,
		maxRangeDays: defaultMaxRangeDays,
	}
	if passages != nil {
		s.passages = passages
	}
	if cache != nil {
		s.cache = cache
	}
	if producer != nil {
		s.publisher = producer
	}
	if cfg != nil {
		if cfg.CacheTTLMinutes > 0 {
			s.cacheTTL = time.Duration(cfg.CacheTTLMinutes) * time.Minute
		}
		if cfg.MaxRangeDays > 0 {
			s.maxRangeDays = cfg.MaxRangeDays
		}
	}
	return s
}

// CalculateFees группирует проезды по календарным датам и считает сбор за каждый день.
func (s *TollService) CalculateFees(ctx context.Context, req *models.DailyFeeRequest) (*models.CalculateFeesResponse, error) {
	if req == nil {
		return nil, apperror.Validation("request is required", nil)
	}
	if err := validate.Struct(req); err != nil {
		return nil, apperror.Validation(validationMessage(err), err)
	}

	byDate := make(map[string][]time.Time)
	for _, ts := range req.Passages {
		date := ts.Format(models.DateLayout)
		byDate[date] = append(byDate[date], ts)
	}

	dates := make([]string, 0, len(byDate))
	for date := range byDate {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	resp := &models.CalculateFeesResponse{
		VehicleType: req.VehicleType,
		Exempt:      req.VehicleType.IsTollExempt(),
		Days:        make([]models.DailyFeeResponse, 0, len(dates)),
	}
	for _, date := range dates {
		passages := byDate[date]
		day := models.DailyFeeResponse{
			Date:    date,
			Fee:     s.aggregator.DailyFee(req.VehicleType, passages),
			Windows: s.aggregator.Windows(req.VehicleType, passages),
		}
		resp.Total += day.Fee
		resp.Days = append(resp.Days, day)
	}

	return resp, nil
}

// Schedule возвращает действующие тарифные окна.
func (s *TollService) Schedule() []toll.FeeWindow {
	return s.aggregator.Schedule().Windows()
}

// RecordPassage сохраняет проезд и сбрасывает кеш сбора за его день.
func (s *TollService) RecordPassage(ctx context.Context, req *models.RecordPassageRequest) (*models.Passage, error) {
	passage, err := s.passages.RecordPassage(ctx, req)
	if err != nil {
		return nil, err
	}
	s.invalidateDailyFee(ctx, passage.Plate, passage.PassedAt)
	return passage, nil
}

// VehicleDailyFee возвращает сбор ТС за день по сохранённым проездам.
func (s *TollService) VehicleDailyFee(ctx context.Context, plate string, day time.Time) (*models.VehicleDailyFee, error) {
	plate = models.NormalizePlate(plate)
	if plate == "" {
		return nil, apperror.Validation("plate is required", nil)
	}

	date := day.Format(models.DateLayout)
	cacheKey := redis.DailyFeeKey(plate, date)

	var cached models.VehicleDailyFee
	if s.tryGetFromCache(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	passages, err := s.passages.ListPassagesForDay(ctx, plate, day)
	if err != nil {
		return nil, err
	}
	if len(passages) == 0 {
		return nil, apperror.NotFound(fmt.Sprintf("no passages for %s on %s", plate, date), nil)
	}

	vehicleType := passages[0].VehicleType
	timestamps := make([]time.Time, 0, len(passages))
	for _, p := range passages {
		timestamps = append(timestamps, p.PassedAt)
	}

	result := &models.VehicleDailyFee{
		Plate:        plate,
		Date:         date,
		VehicleType:  vehicleType,
		Fee:          s.aggregator.DailyFee(vehicleType, timestamps),
		Passages:     len(passages),
		CalculatedAt: time.Now(),
	}

	s.saveToCache(ctx, cacheKey, result)
	if s.publisher != nil {
		if err := s.publisher.PublishDailyFeeCalculated(result); err != nil {
			s.log.WithError(err).WithField("plate", plate).Warn("Failed to publish daily fee event")
		}
	}

	s.log.WithFields(map[string]interface{}{
		"plate":    plate,
		"date":     date,
		"fee":      result.Fee,
		"passages": result.Passages,
	}).Debug("Daily fee calculated")

	return result, nil
}

// VehicleFees возвращает сборы ТС за каждый день периода [from, to].
// Дни без проездов пропускаются.
func (s *TollService) VehicleFees(ctx context.Context, plate string, from, to time.Time) (*models.VehicleFeesResponse, error) {
	if to.Before(from) {
		return nil, apperror.Validation("to must not be before from", nil)
	}
	days := int(to.Sub(from).Hours()/24) + 1
	if days > s.maxRangeDays {
		return nil, apperror.Validation(fmt.Sprintf("range must not exceed %d days", s.maxRangeDays), nil)
	}

	results := make([]*models.VehicleDailyFee, days)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(rangeFetchConcurrency)
	for i := 0; i < days; i++ {
		i := i
		day := from.AddDate(0, 0, i)
		g.Go(func() error {
			fee, err := s.VehicleDailyFee(gctx, plate, day)
			if apperror.Is(err, apperror.KindNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			results[i] = fee
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	resp := &models.VehicleFeesResponse{
		Plate: models.NormalizePlate(plate),
		From:  from.Format(models.DateLayout),
		To:    to.Format(models.DateLayout),
		Days:  make([]*models.VehicleDailyFee, 0, days),
	}
	for _, fee := range results {
		if fee == nil {
			continue
		}
		resp.Days = append(resp.Days, fee)
		resp.Total += fee.Fee
	}
	return resp, nil
}

// IngestPassage обрабатывает событие passage.recorded из Kafka.
func (s *TollService) IngestPassage(ctx context.Context, event *models.Event) error {
	var data models.PassageRecordedData
	if err := json.Unmarshal(event.Data, &data); err != nil {
		return apperror.Validation(fmt.Sprintf("malformed passage event %s", event.ID), err)
	}

	req := &models.RecordPassageRequest{
		Plate:       data.Plate,
		VehicleType: data.VehicleType,
		GantryID:    data.GantryID,
		PassedAt:    data.PassedAt,
	}
	if data.PassageID != uuid.Nil {
		id := data.PassageID
		req.ID = &id
	}

	_, err := s.RecordPassage(ctx, req)
	return err
}

func (s *TollService) invalidateDailyFee(ctx context.Context, plate string, passedAt time.Time) {
	if s.cache == nil {
		return
	}
	key := redis.DailyFeeKey(plate, passedAt.Format(models.DateLayout))
	if err := s.cache.Delete(ctx, key); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("Failed to invalidate daily fee cache")
	}
}

func (s *TollService) tryGetFromCache(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}

	if err := s.cache.Get(ctx, key, dest); err != nil {
		return false
	}
	return true
}

func (s *TollService) saveToCache(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}

	if err := s.cache.Set(ctx, key, value, s.cacheTTL); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("Failed to cache daily fee")
	}
}
