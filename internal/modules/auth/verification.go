package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"regexp"

	"go.uber.org/zap"

	"mathtutor/internal/domain"
	"mathtutor/internal/pkg/validator"
	"mathtutor/internal/repository"
)

const maxCodeAttempts = 5

var codeRegex = regexp.MustCompile(`^\d{6}$`)

// RequestTeacherCode issues a fresh 6-digit code for email. Older unused
// codes are superseded because only the latest one is checked.
func (s *Service) RequestTeacherCode(ctx context.Context, req TeacherCodeRequest) error {
	req.Email = normalizeEmail(req.Email)
	if err := validator.Validate(req); err != nil {
		return err
	}
	exists, err := s.users.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return err
	}
	if exists {
		return ErrEmailAlreadyExists
	}

	code, err := generateVerificationCode()
	if err != nil {
		return err
	}
	now := s.clock.Now()
	row := &domain.VerificationCode{
		Email:     req.Email,
		CodeHash:  hashVerificationCode(code, s.pepper),
		ExpiresAt: now.Add(s.codeTTL),
		CreatedAt: now,
	}
	if err := s.codes.Create(ctx, row); err != nil {
		return err
	}
	s.log.Info("teacher code issued", zap.Int64("code_id", row.ID))
	return s.mailer.SendVerificationCode(ctx, req.Email, code)
}

// checkCode matches code against the latest active code for email and
// returns that row. Each wrong guess counts; the fifth locks the code.
func (s *Service) checkCode(ctx context.Context, email, code string) (*domain.VerificationCode, error) {
	if !codeRegex.MatchString(code) {
		return nil, ErrInvalidCodeFormat
	}
	row, err := s.codes.GetLatestActive(ctx, email)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrInvalidCode
		}
		return nil, err
	}

	if !row.ExpiresAt.After(s.clock.Now()) {
		return nil, ErrInvalidCode
	}
	if row.Attempts >= maxCodeAttempts {
		return nil, ErrTooManyAttempts
	}

	hash := hashVerificationCode(code, s.pepper)
	if subtle.ConstantTimeCompare([]byte(hash), []byte(row.CodeHash)) != 1 {
		if err := s.codes.IncrementAttempts(ctx, row.ID); err != nil {
			return nil, err
		}
		if row.Attempts+1 >= maxCodeAttempts {
			return nil, ErrTooManyAttempts
		}
		return nil, ErrInvalidCode
	}
	return row, nil
}

// markCodeUsed consumes a checked code through codes, which may be bound to
// the registration transaction. A code consumed concurrently is invalid.
func (s *Service) markCodeUsed(ctx context.Context, codes CodeRepository, row *domain.VerificationCode) error {
	if err := codes.MarkUsed(ctx, row.ID, s.clock.Now()); err != nil {
		if errors.Is(err, repository.ErrStale) {
			return ErrInvalidCode
		}
		return err
	}
	return nil
}

func generateVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func hashVerificationCode(code, pepper string) string {
	h := sha256.Sum256([]byte(code + pepper))
	return hex.EncodeToString(h[:])
}
