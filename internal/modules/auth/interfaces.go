package auth

import (
	"context"
	"time"

	"mathtutor/internal/domain"
)

// UserRepository is the slice of the user store auth needs.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	UpdateAvatar(ctx context.Context, id int64, url string) error
}

type CodeRepository interface {
	Create(ctx context.Context, c *domain.VerificationCode) error
	GetLatestActive(ctx context.Context, email string) (*domain.VerificationCode, error)
	IncrementAttempts(ctx context.Context, id int64) error
	MarkUsed(ctx context.Context, id int64, at time.Time) error
}

type TokenIssuer interface {
	GenerateToken(userID int64, role string) (string, error)
}

type Mailer interface {
	SendVerificationCode(ctx context.Context, email, code string) error
}

// Transactor runs fn with repositories bound to one database transaction.
// Returning an error from fn rolls every write back.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(users UserRepository, codes CodeRepository) error) error
}
