// Package testdb opens isolated in-memory databases for service tests.
package testdb

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"mathtutor/internal/domain"
)

// New returns a migrated in-memory SQLite database private to t. It uses a
// single connection, so code running inside a transaction must only use
// the transaction handle.
func New(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:test_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(domain.Models()...))
	return db
}

// User inserts a user with the given role.
func User(t testing.TB, db *gorm.DB, role domain.UserRole) *domain.User {
	t.Helper()
	id := uuid.NewString()
	u := &domain.User{
		Email:        id + "@example.com",
		PasswordHash: "not-a-hash",
		Name:         string(role) + " " + id[:4],
		Role:         role,
		DisplayID:    "MT-" + id[:8],
	}
	require.NoError(t, db.WithContext(context.Background()).Create(u).Error)
	return u
}

// SlotSpec describes a time slot to insert.
type SlotSpec struct {
	TeacherID int64
	Start     time.Time
	Min, Max  int
	Group     bool
	MinPrice  float64
}

func Slot(t testing.TB, db *gorm.DB, spec SlotSpec) *domain.TimeSlot {
	t.Helper()
	if spec.Min == 0 {
		spec.Min = 1
	}
	if spec.Max == 0 {
		spec.Max = spec.Min
	}
	s := &domain.TimeSlot{
		TeacherID:      spec.TeacherID,
		StartTime:      spec.Start,
		EndTime:        spec.Start.Add(time.Hour),
		MinStudents:    spec.Min,
		MaxStudents:    spec.Max,
		IsGroupSession: spec.Group,
		MinPrice:       spec.MinPrice,
		Status:         domain.SlotAvailable,
	}
	require.NoError(t, db.Create(s).Error)
	return s
}
