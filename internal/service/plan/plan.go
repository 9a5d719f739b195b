// Package plan applies the subscription lifecycle: lazy expiry downgrades
// and the calendar day used for daily quotas.
package plan

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"terraai/internal/domain/models"
	"terraai/internal/domain/repositories"
	"terraai/internal/metrics"
)

// Service owns plan-expiry checks. There is no background job: an expired
// plan is downgraded the first time a request looks at it.
type Service struct {
	users  repositories.UserRepository
	loc    *time.Location
	now    func() time.Time
	logger *slog.Logger
}

// NewService creates a plan service. Quota days are calendar days in loc.
func NewService(users repositories.UserRepository, loc *time.Location, logger *slog.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		users:  users,
		loc:    loc,
		now:    time.Now,
		logger: logger,
	}
}

// WithClock replaces the time source. Used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Now returns the current time.
func (s *Service) Now() time.Time {
	return s.now()
}

// EnsureCurrent downgrades u to FREE if its paid plan has lapsed, persisting
// the change and updating u in place. It returns true when a downgrade
// happened.
func (s *Service) EnsureCurrent(ctx context.Context, u *models.User) (bool, error) {
	if !u.Expired(s.now()) {
		return false, nil
	}

	from := u.Plan
	if err := s.users.UpdatePlan(ctx, u.ID, models.PlanFree, nil); err != nil {
		return false, fmt.Errorf("downgrade expired plan: %w", err)
	}
	u.Plan = models.PlanFree
	u.PlanExpiry = nil

	metrics.PlanDowngradesTotal.WithLabelValues(string(from)).Inc()
	s.logger.Info("plan expired, downgraded to FREE",
		"user_id", u.ID,
		"from_plan", from,
	)
	return true, nil
}

// Today returns the bounds [start, end) of the current quota day.
func (s *Service) Today() (time.Time, time.Time) {
	return DayBounds(s.now(), s.loc)
}

// DayBounds returns midnight-to-midnight in loc around t.
func DayBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	t = t.In(loc)
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}
