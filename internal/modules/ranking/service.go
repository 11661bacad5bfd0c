package ranking

import (
	"context"
	"time"

	"go.uber.org/zap"

	"mathtutor/internal/domain"
	"mathtutor/internal/pkg/clock"
	"mathtutor/internal/pkg/logger"
)

type statsReader interface {
	EndorsementCounts(ctx context.Context) (map[int64]int, error)
	CompletedQuestionsSince(ctx context.Context, since time.Time) (map[int64]int, error)
	LastAnswered(ctx context.Context) (map[int64]time.Time, error)
	LastBookingUpdate(ctx context.Context) (map[int64]time.Time, error)
}

type teacherLister interface {
	ListByRole(ctx context.Context, role domain.UserRole) ([]domain.User, error)
}

type Service struct {
	stats statsReader
	users teacherLister
	clock clock.Clock
	log   *zap.Logger
}

func NewService(stats statsReader, users teacherLister, clk clock.Clock, log *zap.Logger) *Service {
	if clk == nil {
		clk = clock.Real{}
	}
	return &Service{stats: stats, users: users, clock: clk, log: logger.OrNop(log)}
}

// Teachers computes the ranking from current data. Banned teachers are
// left out.
func (s *Service) Teachers(ctx context.Context) ([]TeacherStats, error) {
	teachers, err := s.users.ListByRole(ctx, domain.RoleTeacher)
	if err != nil {
		return nil, err
	}
	endorsements, err := s.stats.EndorsementCounts(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.stats.CompletedQuestionsSince(ctx, s.clock.Now().Add(-RecentWindow))
	if err != nil {
		return nil, err
	}
	answered, err := s.stats.LastAnswered(ctx)
	if err != nil {
		return nil, err
	}
	booked, err := s.stats.LastBookingUpdate(ctx)
	if err != nil {
		return nil, err
	}

	stats := make([]TeacherStats, 0, len(teachers))
	for _, t := range teachers {
		stats = append(stats, TeacherStats{
			TeacherID:         t.ID,
			Name:              t.Name,
			DisplayID:         t.DisplayID,
			AvatarURL:         t.AvatarURL,
			Endorsements:      endorsements[t.ID],
			RecentCompletions: recent[t.ID],
			LastActivity:      maxTime(answered[t.ID], booked[t.ID], t.CreatedAt),
		})
	}

	s.log.Debug("ranking computed", zap.Int("teachers", len(stats)))
	return Rank(stats), nil
}
