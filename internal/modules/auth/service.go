package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"mathtutor/internal/domain"
	"mathtutor/internal/pkg/clock"
	"mathtutor/internal/pkg/logger"
	"mathtutor/internal/pkg/validator"
	"mathtutor/internal/repository"
)

type Service struct {
	users   UserRepository
	codes   CodeRepository
	tx      Transactor
	jwt     TokenIssuer
	mailer  Mailer
	pepper  string
	codeTTL time.Duration
	clock   clock.Clock
	log     *zap.Logger
}

type Options struct {
	// Tx makes code consumption and account creation atomic. Without it
	// the two writes run one after the other.
	Tx      Transactor
	Pepper  string
	CodeTTL time.Duration
	Clock   clock.Clock
	Log     *zap.Logger
}

func NewService(users UserRepository, codes CodeRepository, jwt TokenIssuer, mailer Mailer, opts Options) *Service {
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}
	if opts.CodeTTL <= 0 {
		opts.CodeTTL = 10 * time.Minute
	}
	if opts.Tx == nil {
		opts.Tx = directTx{users: users, codes: codes}
	}
	return &Service{
		users:   users,
		codes:   codes,
		tx:      opts.Tx,
		jwt:     jwt,
		mailer:  mailer,
		pepper:  opts.Pepper,
		codeTTL: opts.CodeTTL,
		clock:   opts.Clock,
		log:     logger.OrNop(opts.Log),
	}
}

// Register creates a STUDENT or TEACHER account. Teachers must present the
// code issued by RequestTeacherCode for the same email. Admins are only
// created by the seed command.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	req.Email = normalizeEmail(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	req.Role = domain.UserRole(strings.ToUpper(string(req.Role)))
	if err := validator.Validate(req); err != nil {
		return nil, err
	}
	if req.Role != domain.RoleStudent && req.Role != domain.RoleTeacher {
		return nil, ErrRoleNotAllowed
	}

	exists, err := s.users.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailAlreadyExists
	}

	var code *domain.VerificationCode
	if req.Role == domain.RoleTeacher {
		if req.Code == "" {
			return nil, ErrCodeRequired
		}
		if code, err = s.checkCode(ctx, req.Email, req.Code); err != nil {
			return nil, err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	user := &domain.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		Name:         req.Name,
		Role:         req.Role,
		DisplayID:    NewDisplayID(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	// the code is burnt only if the account is created
	err = s.tx.WithinTx(ctx, func(users UserRepository, codes CodeRepository) error {
		if code != nil {
			if err := s.markCodeUsed(ctx, codes, code); err != nil {
				return err
			}
		}
		return users.Create(ctx, user)
	})
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, err
	}

	s.log.Info("user registered",
		zap.Int64(logger.FieldUserID, user.ID),
		zap.String("role", string(user.Role)),
	)
	return user, nil
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validator.Validate(req); err != nil {
		return nil, err
	}
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if user.IsBanned {
		return nil, ErrAccountBanned
	}

	token, err := s.jwt.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: user, AccessToken: token}, nil
}

func (s *Service) Me(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *Service) UpdateAvatar(ctx context.Context, userID int64, req AvatarRequest) (*domain.User, error) {
	if err := validator.Validate(req); err != nil {
		return nil, err
	}
	if err := s.users.UpdateAvatar(ctx, userID, req.AvatarURL); err != nil {
		return nil, err
	}
	return s.Me(ctx, userID)
}

// NewDisplayID returns a public handle of the form MT-XXXXXXXX.
func NewDisplayID() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "MT-" + strings.ToUpper(id[:8])
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
