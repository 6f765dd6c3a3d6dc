package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hosteldesk/backend/internal/database"
	"github.com/hosteldesk/backend/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	historyPageSize   = 20
	defaultDailyDays  = 7
	analyticsCacheTTL = 5 * time.Minute
)

var errorAnswerFragments = []string{
	"no response from llm api",
	"unexpected response format from llm api",
	"llm configuration is missing",
}

// IsErrorAnswer reports whether a stored answer records a failed generation.
func IsErrorAnswer(answer string) bool {
	a := strings.ToLower(answer)
	if strings.HasPrefix(a, "error calling llm api") {
		return true
	}
	for _, f := range errorAnswerFragments {
		if strings.Contains(a, f) {
			return true
		}
	}
	return false
}

// AnalyticsService reads QA history.
type AnalyticsService struct {
	history models.QaHistoryRepository
	cache   AnalyticsCache
	logger  *logrus.Logger
	now     func() time.Time
}

func NewAnalyticsService(history models.QaHistoryRepository, cache AnalyticsCache, logger *logrus.Logger) *AnalyticsService {
	return &AnalyticsService{
		history: history,
		cache:   cache,
		logger:  logger,
		now:     time.Now,
	}
}

// History returns the newest records of userID.
func (s *AnalyticsService) History(userID uint) ([]models.QaHistoryDTO, error) {
	records, err := s.history.GetRecentByUser(userID, historyPageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	dtos := make([]models.QaHistoryDTO, 0, len(records))
	for _, r := range records {
		dtos = append(dtos, models.QaHistoryDTO{
			ID:       r.ID,
			Admin:    r.Admin,
			Question: r.Question,
			Answer:   r.Answer,
			AskedAt:  r.AskedAt,
		})
	}
	return dtos, nil
}

// GlobalAnalytics summarizes every record.
func (s *AnalyticsService) GlobalAnalytics(ctx context.Context) (*models.AnalyticsDTO, error) {
	return s.cached(ctx, nil, s.history.GetAll)
}

// UserAnalytics summarizes the newest records of userID.
func (s *AnalyticsService) UserAnalytics(ctx context.Context, userID uint) (*models.AnalyticsDTO, error) {
	return s.cached(ctx, &userID, func() ([]models.QaHistory, error) {
		return s.history.GetRecentByUser(userID, historyPageSize)
	})
}

func (s *AnalyticsService) cached(ctx context.Context, userID *uint, load func() ([]models.QaHistory, error)) (*models.AnalyticsDTO, error) {
	key := database.AnalyticsKey(userID)
	if s.cache != nil {
		if analytics, err := s.cache.GetCachedAnalytics(ctx, key); err == nil {
			return analytics, nil
		}
	}

	records, err := load()
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	analytics := Summarize(records)

	if s.cache != nil {
		if err := s.cache.CacheAnalytics(ctx, key, analytics, analyticsCacheTTL); err != nil {
			s.logger.WithError(err).Debug("Failed to cache QA analytics")
		}
	}
	return analytics, nil
}

// Summarize counts questions by scope and outcome.
func Summarize(records []models.QaHistory) *models.AnalyticsDTO {
	analytics := &models.AnalyticsDTO{}
	var first, last time.Time
	for _, r := range records {
		analytics.TotalQuestions++
		if r.Admin {
			analytics.TotalAdminQuestions++
		} else {
			analytics.TotalUserQuestions++
		}
		if IsErrorAnswer(r.Answer) {
			analytics.ErrorCount++
		} else {
			analytics.SuccessCount++
		}
		if first.IsZero() || r.AskedAt.Before(first) {
			first = r.AskedAt
		}
		if last.IsZero() || r.AskedAt.After(last) {
			last = r.AskedAt
		}
	}
	if !first.IsZero() {
		analytics.FirstQuestionDate = &models.Date{Time: dateOf(first)}
		analytics.LastQuestionDate = &models.Date{Time: dateOf(last)}
	}
	return analytics
}

// DailyCounts buckets the last days days of questions, oldest first.
// userID nil means every user.
func (s *AnalyticsService) DailyCounts(userID *uint, days int) ([]models.DailyCountDTO, error) {
	if days <= 0 {
		days = defaultDailyDays
	}
	today := dateOf(s.now())
	start := today.AddDate(0, 0, -(days - 1))

	records, err := s.history.GetSince(start, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	return Bucket(records, start, days), nil
}

// Bucket counts records per calendar day starting at start.
func Bucket(records []models.QaHistory, start time.Time, days int) []models.DailyCountDTO {
	buckets := make([]models.DailyCountDTO, days)
	index := make(map[string]int, days)
	for i := range buckets {
		day := start.AddDate(0, 0, i)
		buckets[i].Date = models.Date{Time: day}
		index[day.Format("2006-01-02")] = i
	}

	for _, r := range records {
		i, ok := index[r.AskedAt.In(start.Location()).Format("2006-01-02")]
		if !ok {
			continue
		}
		buckets[i].Total++
		if r.Admin {
			buckets[i].Admin++
		} else {
			buckets[i].User++
		}
	}
	return buckets
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
