package review

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

type reviewStore interface {
	CreateEndorsement(ctx context.Context, e *domain.Endorsement) error
	ListEndorsements(ctx context.Context, teacherID int64) ([]domain.Endorsement, error)
	CountEndorsements(ctx context.Context, teacherID int64) (int64, error)
	CreateRating(ctx context.Context, r *domain.Rating) error
	ListRatings(ctx context.Context, teacherID int64) ([]domain.Rating, error)
}

type orderReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	HasCompleted(ctx context.Context, studentID, teacherID int64) (bool, error)
}

type userReader interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

type Service struct {
	reviews reviewStore
	orders  orderReader
	users   userReader
	clock   clock.Clock
	log     *zap.Logger
}

func NewService(reviews reviewStore, orders orderReader, users userReader, clk clock.Clock, log *zap.Logger) *Service {
	if clk == nil {
		clk = clock.Real{}
	}
	return &Service{reviews: reviews, orders: orders, users: users, clock: clk, log: logger.OrNop(log)}
}

// Endorse records a lifetime endorsement. The unique index on the pair
// settles concurrent attempts: the loser gets ErrAlreadyEndorsed.
func (s *Service) Endorse(ctx context.Context, actor order.Actor, req EndorseRequest) (*domain.Endorsement, error) {
	if actor.Role != domain.RoleStudent {
		return nil, ErrStudentsOnly
	}
	if err := validator.Validate(req); err != nil {
		return nil, err
	}
	if err := s.requireTeacher(ctx, req.TeacherID); err != nil {
		return nil, err
	}

	done, err := s.orders.HasCompleted(ctx, actor.ID, req.TeacherID)
	if err != nil {
		return nil, err
	}
	if !done {
		return nil, ErrNoCompletedSession
	}

	e := &domain.Endorsement{StudentID: actor.ID, TeacherID: req.TeacherID, CreatedAt: s.clock.Now()}
	if err := s.reviews.CreateEndorsement(ctx, e); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrAlreadyEndorsed
		}
		return nil, err
	}
	s.log.Info("teacher endorsed",
		zap.Int64(logger.FieldUserID, actor.ID),
		zap.Int64("teacher_id", req.TeacherID),
	)
	return e, nil
}

func (s *Service) Endorsements(ctx context.Context, teacherID int64) (*EndorsementList, error) {
	if err := s.requireTeacher(ctx, teacherID); err != nil {
		return nil, err
	}
	items, err := s.reviews.ListEndorsements(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	cnt, err := s.reviews.CountEndorsements(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	return &EndorsementList{TeacherID: teacherID, Count: cnt, Endorsements: items}, nil
}

// Rate attaches 1..5 stars to a COMPLETED order by its student. One rating
// per order.
func (s *Service) Rate(ctx context.Context, actor order.Actor, req RateRequest) (*domain.Rating, error) {
	if actor.Role != domain.RoleStudent {
		return nil, ErrStudentsOnly
	}
	req.Comment = strings.TrimSpace(req.Comment)
	if err := validator.Validate(req); err != nil {
		return nil, err
	}

	o, err := s.orders.GetByID(ctx, req.OrderID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if o.StudentID != actor.ID {
		return nil, ErrOrderNotFound
	}
	if o.Status != domain.StatusCompleted || o.TeacherID == nil {
		return nil, ErrNotRateable
	}

	r := &domain.Rating{
		OrderID:   o.ID,
		StudentID: actor.ID,
		TeacherID: *o.TeacherID,
		Stars:     req.Stars,
		Comment:   req.Comment,
		CreatedAt: s.clock.Now(),
	}
	if err := s.reviews.CreateRating(ctx, r); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrAlreadyRated
		}
		return nil, err
	}
	return r, nil
}

func (s *Service) Ratings(ctx context.Context, teacherID int64) ([]domain.Rating, error) {
	if err := s.requireTeacher(ctx, teacherID); err != nil {
		return nil, err
	}
	return s.reviews.ListRatings(ctx, teacherID)
}

func (s *Service) requireTeacher(ctx context.Context, id int64) error {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return ErrTeacherNotFound
		}
		return err
	}
	if u.Role != domain.RoleTeacher {
		return ErrTeacherNotFound
	}
	return nil
}
