package catalog

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"go.uber.org/zap"

	"mathtutor/internal/domain"
	"mathtutor/internal/modules/order"
	"mathtutor/internal/pkg/clock"
	"mathtutor/internal/pkg/logger"
	"mathtutor/internal/pkg/validator"
	"mathtutor/internal/repository"
)

type Repository interface {
	CreateCourse(ctx context.Context, c *domain.Course) error
	ListCourses(ctx context.Context, teacherID int64) ([]domain.Course, error)
	CreateChallenge(ctx context.Context, c *domain.Challenge) error
	GetChallenge(ctx context.Context, id int64) (*domain.Challenge, error)
	ListChallenges(ctx context.Context, difficulty domain.Difficulty) ([]domain.Challenge, error)
	CreateAttempt(ctx context.Context, a *domain.ChallengeAttempt) error
}

type Service struct {
	repo  Repository
	clock clock.Clock
	log   *zap.Logger
}

func NewService(repo Repository, clk clock.Clock, log *zap.Logger) *Service {
	if clk == nil {
		clk = clock.Real{}
	}
	return &Service{repo: repo, clock: clk, log: logger.OrNop(log)}
}

/* ---------- COURSES ---------- */

func (s *Service) CreateCourse(ctx context.Context, actor order.Actor, req CreateCourseRequest) (*domain.Course, error) {
	if actor.Role != domain.RoleTeacher {
		return nil, ErrTeachersOnly
	}
	req.Title = strings.TrimSpace(req.Title)
	if err := validator.Validate(req); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	c := &domain.Course{
		TeacherID:   actor.ID,
		Title:       req.Title,
		Description: strings.TrimSpace(req.Description),
		Price:       req.Price,
		IsPublished: req.IsPublished,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.CreateCourse(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// ListCourses returns published courses. A teacher asking for their own
// courses also sees drafts.
func (s *Service) ListCourses(ctx context.Context, actor order.Actor, q CourseQuery) ([]domain.Course, error) {
	if q.TeacherID > 0 && q.TeacherID == actor.ID && actor.Role == domain.RoleTeacher {
		return s.repo.ListCourses(ctx, actor.ID)
	}
	published, err := s.repo.ListCourses(ctx, 0)
	if err != nil {
		return nil, err
	}
	if q.TeacherID == 0 {
		return published, nil
	}
	out := make([]domain.Course, 0, len(published))
	for _, c := range published {
		if c.TeacherID == q.TeacherID {
			out = append(out, c)
		}
	}
	return out, nil
}

/* ---------- CHALLENGES ---------- */

func (s *Service) CreateChallenge(ctx context.Context, actor order.Actor, req CreateChallengeRequest) (*domain.Challenge, error) {
	if actor.Role != domain.RoleTeacher && actor.Role != domain.RoleAdmin {
		return nil, ErrAuthorsOnly
	}
	req.Difficulty = domain.Difficulty(strings.ToUpper(string(req.Difficulty)))
	req.Title = strings.TrimSpace(req.Title)
	if err := validator.Validate(req); err != nil {
		return nil, err
	}

	c := &domain.Challenge{
		AuthorID:   actor.ID,
		Title:      req.Title,
		Body:       req.Body,
		Difficulty: req.Difficulty,
		AnswerHash: hashAnswer(req.Answer),
		CreatedAt:  s.clock.Now(),
	}
	if err := s.repo.CreateChallenge(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) ListChallenges(ctx context.Context, difficulty string) ([]domain.Challenge, error) {
	return s.repo.ListChallenges(ctx, domain.Difficulty(strings.ToUpper(strings.TrimSpace(difficulty))))
}

// Attempt checks a student's answer and records the outcome. Answers are
// compared after normalization (case and whitespace are ignored).
func (s *Service) Attempt(ctx context.Context, actor order.Actor, challengeID int64, req AttemptRequest) (*AttemptResult, error) {
	if actor.Role != domain.RoleStudent {
		return nil, ErrStudentsOnly
	}
	if err := validator.Validate(req); err != nil {
		return nil, err
	}
	c, err := s.repo.GetChallenge(ctx, challengeID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrChallengeNotFound
		}
		return nil, err
	}

	correct := subtle.ConstantTimeCompare([]byte(hashAnswer(req.Answer)), []byte(c.AnswerHash)) == 1
	attempt := &domain.ChallengeAttempt{
		ChallengeID: c.ID,
		StudentID:   actor.ID,
		Correct:     correct,
		CreatedAt:   s.clock.Now(),
	}
	if err := s.repo.CreateAttempt(ctx, attempt); err != nil {
		return nil, err
	}

	s.log.Debug("challenge attempt",
		zap.Int64(logger.FieldUserID, actor.ID),
		zap.Int64("challenge_id", c.ID),
		zap.Bool("correct", correct),
	)
	return &AttemptResult{ChallengeID: c.ID, Correct: correct}, nil
}

func normalizeAnswer(a string) string {
	return strings.Join(strings.Fields(strings.ToLower(a)), "")
}

func hashAnswer(a string) string {
	sum := sha256.Sum256([]byte(normalizeAnswer(a)))
	return hex.EncodeToString(sum[:])
}
