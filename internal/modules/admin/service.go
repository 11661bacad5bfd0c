package admin

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"mathtutor/internal/domain"
	"mathtutor/internal/modules/order"
	"mathtutor/internal/pkg/clock"
	"mathtutor/internal/pkg/logger"
	"mathtutor/internal/pkg/validator"
	"mathtutor/internal/repository"
)

type Service struct {
	users   UserRepository
	expirer Expirer
	clock   clock.Clock
	log     *zap.Logger
}

func NewService(users UserRepository, expirer Expirer, clk clock.Clock, log *zap.Logger) *Service {
	if clk == nil {
		clk = clock.Real{}
	}
	return &Service{users: users, expirer: expirer, clock: clk, log: logger.OrNop(log)}
}

// -------------------- Users --------------------

func (s *Service) ListUsers(ctx context.Context, actor order.Actor, role string) ([]domain.User, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, ErrAdminsOnly
	}
	r := domain.UserRole(strings.ToUpper(strings.TrimSpace(role)))
	if !r.Valid() {
		return nil, ErrInvalidRole
	}
	return s.users.ListByRole(ctx, r)
}

func (s *Service) Ban(ctx context.Context, actor order.Actor, userID int64, req BanRequest) (*domain.User, error) {
	if err := validator.Validate(req); err != nil {
		return nil, err
	}
	return s.setBanned(ctx, actor, userID, true, strings.TrimSpace(req.Reason))
}

func (s *Service) Unban(ctx context.Context, actor order.Actor, userID int64) (*domain.User, error) {
	return s.setBanned(ctx, actor, userID, false, "")
}

func (s *Service) setBanned(ctx context.Context, actor order.Actor, userID int64, banned bool, reason string) (*domain.User, error) {
	target, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !order.CanBan(actor, target) {
		return nil, ErrCannotBan
	}

	if err := s.users.SetBanned(ctx, userID, banned, reason, s.clock.Now()); err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	s.log.Info("user ban updated",
		zap.Int64(logger.FieldUserID, userID),
		zap.Int64("admin_id", actor.ID),
		zap.Bool("banned", banned),
	)
	return s.users.GetByID(ctx, userID)
}

// -------------------- Orders --------------------

// ExpireNow runs the expiry sweep on demand.
func (s *Service) ExpireNow(ctx context.Context, actor order.Actor) (*ExpireResult, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, ErrAdminsOnly
	}
	n, err := s.expirer.ExpireDue(ctx)
	if err != nil {
		return nil, err
	}
	s.log.Info("manual expiry sweep", zap.Int64("admin_id", actor.ID), zap.Int("expired", n))
	return &ExpireResult{Expired: n}, nil
}
