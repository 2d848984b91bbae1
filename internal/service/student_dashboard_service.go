package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/noah-isme/samms-api/internal/datastore"
	"github.com/noah-isme/samms-api/internal/dto"
	"github.com/noah-isme/samms-api/internal/models"
)

// StudentDashboardService produces the aggregated view shown to a student.
type StudentDashboardService interface {
	GetDashboard(ctx context.Context, studentID string) (dto.StudentDashboardResponse, bool, error)
}

type studentDashboardService struct {
	store    *datastore.DataStore
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
}

// NewStudentDashboardService builds the dashboard aggregator. cache may be nil.
func NewStudentDashboardService(store *datastore.DataStore, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) StudentDashboardService {
	return &studentDashboardService{
		store:    store,
		cache:    cache,
		cacheTTL: ttl,
		logger:   logger.With().Str("component", "student_dashboard_service").Logger(),
	}
}

func (s *studentDashboardService) GetDashboard(ctx context.Context, studentID string) (dto.StudentDashboardResponse, bool, error) {
	tracer := otel.Tracer("github.com/noah-isme/samms-api/internal/service/student_dashboard")
	ctx, span := tracer.Start(ctx, "dashboard.aggregate")
	span.SetAttributes(attribute.String("dashboard.student_id", studentID))
	defer span.End()

	// Every mutation bumps the revision and every boot mints a new epoch, so
	// older cache entries are never read.
	cacheKey := fmt.Sprintf("dashboard:student:%s:epoch:%s:rev:%d", studentID, s.store.Epoch(), s.store.Revision())

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.StudentDashboardResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Str("student_id", studentID).Msg("dashboard cache hit")
				span.SetAttributes(attribute.Bool("dashboard.cache_hit", true))
				return response, true, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("failed to read dashboard cache")
			span.RecordError(err)
		}
	}

	var (
		response dto.StudentDashboardResponse
		found    bool
	)
	s.store.View(func(db *models.Store) {
		student, ok := db.StudentByID(studentID)
		if !ok {
			return
		}
		found = true
		response = dto.StudentDashboardResponse{
			Student:          dto.StudentProfile{ID: student.ID, Name: student.Name, ClassName: student.ClassName},
			Timeline:         attendanceTimeline(db, student.ID),
			AverageBySubject: averageBySubject(db, student.ID),
			RecentScores:     recentScores(db, student.ID, DefaultRankingLimit),
			Summary:          studentSummary(db, student.ID),
		}
	})
	if !found {
		span.SetStatus(codes.Error, "student_not_found")
		return dto.StudentDashboardResponse{}, false, ErrStudentNotFound
	}

	if s.cache != nil {
		payload, err := json.Marshal(response)
		if err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store dashboard cache")
				span.RecordError(err)
			}
		}
	}

	return response, false, nil
}
