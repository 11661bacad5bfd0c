// Command seed fills a development database with an admin, two teachers,
// two students, a few slots and catalog entries.
package main

import (
	"context"
	"log"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"mathtutor/internal/config"
	"mathtutor/internal/database"
	"mathtutor/internal/domain"
	"mathtutor/internal/modules/auth"
	"mathtutor/internal/modules/booking"
	"mathtutor/internal/modules/catalog"
	"mathtutor/internal/modules/order"
	"mathtutor/internal/pkg/clock"
	"mathtutor/internal/pkg/logger"
	"mathtutor/internal/repository"
)

const defaultPassword = "password123"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	zl, err := logger.New(&logger.Config{Level: cfg.LogLevel, Format: "console"}, "mathtutor-seed")
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx := context.Background()
	db, err := database.Connect(cfg.DatabaseURL, zl)
	if err != nil {
		zl.Fatal("db connect failed", zap.Error(err))
	}
	if err := database.Migrate(ctx, db, zl); err != nil {
		zl.Fatal("migration failed", zap.Error(err))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(defaultPassword), bcrypt.DefaultCost)
	if err != nil {
		zl.Fatal("hash password", zap.Error(err))
	}

	users := repository.NewUserRepository(db)
	mk := func(name, email string, role domain.UserRole) *domain.User {
		if u, err := users.GetByEmail(ctx, email); err == nil {
			zl.Info("user exists", zap.String("email", email))
			return u
		}
		u := &domain.User{
			Email:        email,
			PasswordHash: string(hash),
			Name:         name,
			Role:         role,
			DisplayID:    auth.NewDisplayID(),
		}
		if err := users.Create(ctx, u); err != nil {
			zl.Fatal("create user", zap.String("email", email), zap.Error(err))
		}
		zl.Info("user created", zap.String("email", email), zap.String("role", string(role)))
		return u
	}

	mk("Admin", "admin@mathtutor.dev", domain.RoleAdmin)
	alice := mk("Alice Algebra", "alice@mathtutor.dev", domain.RoleTeacher)
	carl := mk("Carl Calculus", "carl@mathtutor.dev", domain.RoleTeacher)
	mk("Sam Student", "sam@mathtutor.dev", domain.RoleStudent)
	mk("Nora Student", "nora@mathtutor.dev", domain.RoleStudent)

	if err := seedSlots(ctx, db, zl, alice, carl); err != nil {
		zl.Fatal("seed slots", zap.Error(err))
	}
	if err := seedCatalog(ctx, db, zl, alice); err != nil {
		zl.Fatal("seed catalog", zap.Error(err))
	}
	zl.Info("seed completed", zap.String("password", defaultPassword))
}

func seedSlots(ctx context.Context, db *gorm.DB, zl *zap.Logger, individual, group *domain.User) error {
	orders := order.NewService(db, clock.Real{}, zl, nil)
	svc := booking.NewService(db, repository.NewSlotRepository(db), orders, zl)

	tomorrow := time.Now().UTC().Truncate(time.Hour).Add(24 * time.Hour)
	slots := []struct {
		teacher *domain.User
		req     booking.CreateSlotRequest
	}{
		{individual, booking.CreateSlotRequest{
			Title:     "Algebra 1:1",
			StartTime: tomorrow,
			EndTime:   tomorrow.Add(time.Hour),
			MinPrice:  30,
		}},
		{group, booking.CreateSlotRequest{
			Title:          "Calculus group session",
			StartTime:      tomorrow.Add(48 * time.Hour),
			EndTime:        tomorrow.Add(50 * time.Hour),
			IsGroupSession: true,
			MinStudents:    3,
			MaxStudents:    5,
			MinPrice:       20,
		}},
	}
	for _, s := range slots {
		actor := order.Actor{ID: s.teacher.ID, Role: s.teacher.Role}
		slot, err := svc.CreateSlot(ctx, actor, s.req)
		if err != nil {
			return err
		}
		zl.Info("slot created", zap.Int64(logger.FieldSlotID, slot.ID), zap.String("title", slot.Title))
	}
	return nil
}

func seedCatalog(ctx context.Context, db *gorm.DB, zl *zap.Logger, teacher *domain.User) error {
	svc := catalog.NewService(repository.NewCatalogRepository(db), clock.Real{}, zl)
	actor := order.Actor{ID: teacher.ID, Role: teacher.Role}

	if _, err := svc.CreateCourse(ctx, actor, catalog.CreateCourseRequest{
		Title:       "Linear equations from scratch",
		Description: "Six short lessons with worked examples.",
		Price:       49,
		IsPublished: true,
	}); err != nil {
		return err
	}
	_, err := svc.CreateChallenge(ctx, actor, catalog.CreateChallengeRequest{
		Title:      "Sum of the first hundred",
		Body:       "What is 1 + 2 + ... + 100?",
		Difficulty: domain.DifficultyEasy,
		Answer:     "5050",
	})
	return err
}
