package auth

import (
	"context"

	"go.uber.org/zap"
)

// ConsoleMailer writes verification codes to the log instead of sending
// mail. It is the only mailer; real delivery is out of scope.
type ConsoleMailer struct {
	enabled bool
	log     *zap.Logger
}

func NewConsoleMailer(enabled bool, log *zap.Logger) *ConsoleMailer {
	if log == nil {
		log = zap.NewNop()
	}
	return &ConsoleMailer{enabled: enabled, log: log}
}

func (m *ConsoleMailer) SendVerificationCode(_ context.Context, email, code string) error {
	if m.enabled {
		m.log.Info("dev email: verification code", zap.String("email", email), zap.String("code", code))
	}
	return nil
}
