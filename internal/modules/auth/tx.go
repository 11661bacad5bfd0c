package auth

import (
	"context"

	"gorm.io/gorm"

	"mathtutor/internal/repository"
)

type gormTransactor struct {
	db *gorm.DB
}

func NewTransactor(db *gorm.DB) Transactor {
	return gormTransactor{db: db}
}

func (t gormTransactor) WithinTx(ctx context.Context, fn func(UserRepository, CodeRepository) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(repository.NewUserRepository(tx), repository.NewVerificationCodeRepository(tx))
	})
}

// directTx runs fn on the service's own repositories without a
// transaction. It backs services built without a Transactor.
type directTx struct {
	users UserRepository
	codes CodeRepository
}

func (t directTx) WithinTx(_ context.Context, fn func(UserRepository, CodeRepository) error) error {
	return fn(t.users, t.codes)
}
