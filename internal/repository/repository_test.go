package repository

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"mathtutor/internal/domain"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:repo_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(domain.Models()...))
	return db
}

func createUser(t *testing.T, db *gorm.DB, role domain.UserRole) *domain.User {
	t.Helper()
	id := uuid.NewString()
	u := &domain.User{
		Email:        id + "@example.com",
		PasswordHash: "x",
		Name:         string(role),
		Role:         role,
		DisplayID:    "MT-" + id[:8],
	}
	require.NoError(t, NewUserRepository(db).Create(context.Background(), u))
	return u
}

func TestSlotRepository_ReserveNeverExceedsCapacity(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	teacher := createUser(t, db, domain.RoleTeacher)
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	slot := &domain.TimeSlot{
		TeacherID:   teacher.ID,
		StartTime:   now.Add(24 * time.Hour),
		EndTime:     now.Add(25 * time.Hour),
		MinStudents: 1,
		MaxStudents: 3,
		MinPrice:    20,
		Status:      domain.SlotAvailable,
	}
	repo := NewSlotRepository(db)
	require.NoError(t, repo.Create(ctx, slot))

	var ok, full int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := repo.Reserve(ctx, slot.ID, now)
			switch err {
			case nil:
				atomic.AddInt32(&ok, 1)
			case ErrNoSeat:
				atomic.AddInt32(&full, 1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 3, ok)
	assert.EqualValues(t, 7, full)

	got, err := repo.GetByID(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.BookedCount)
	assert.Equal(t, domain.SlotBooked, got.Status)

	require.NoError(t, repo.Release(ctx, slot.ID, now))
	got, err = repo.GetByID(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.BookedCount)
	assert.Equal(t, domain.SlotAvailable, got.Status)
}

func TestSlotRepository_StampLinksOnce(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	teacher := createUser(t, db, domain.RoleTeacher)
	now := time.Now().UTC()
	slot := &domain.TimeSlot{TeacherID: teacher.ID, StartTime: now, EndTime: now.Add(time.Hour), MinStudents: 1, MaxStudents: 1, Status: domain.SlotAvailable}
	repo := NewSlotRepository(db)
	require.NoError(t, repo.Create(ctx, slot))

	stamped, err := repo.StampLinks(ctx, slot.ID, "https://meet/1", "https://chat/1", now)
	require.NoError(t, err)
	assert.True(t, stamped)

	stamped, err = repo.StampLinks(ctx, slot.ID, "https://meet/2", "https://chat/2", now)
	require.NoError(t, err)
	assert.False(t, stamped)

	got, err := repo.GetByID(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://meet/1", got.MeetingLink)
}

func TestOrderRepository_SaveIsConditional(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	student := createUser(t, db, domain.RoleStudent)
	repo := NewOrderRepository(db)

	o := &domain.Order{
		Kind:          domain.KindQuestion,
		StudentID:     student.ID,
		Price:         10,
		Status:        domain.StatusPending,
		PaymentStatus: domain.PaymentCompleted,
		PaymentHeld:   true,
		Question:      &domain.QuestionContent{ResponseHours: 24, Deadline: time.Now().UTC(), Text: "2+2?"},
	}
	require.NoError(t, repo.Create(ctx, o))

	locked, err := repo.GetForUpdate(ctx, o.ID)
	require.NoError(t, err)
	require.NotNil(t, locked.Question)
	assert.Equal(t, "2+2?", locked.Question.Text)

	locked.Status = domain.StatusCancelled
	require.NoError(t, repo.Save(ctx, locked, domain.StatusPending, domain.PaymentCompleted))

	locked.Status = domain.StatusExpired
	assert.ErrorIs(t, repo.Save(ctx, locked, domain.StatusPending, domain.PaymentCompleted), ErrStale)

	got, err := repo.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, got.Status)
}

func TestOrderRepository_ListOverdueQuestions(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	student := createUser(t, db, domain.RoleStudent)
	repo := NewOrderRepository(db)
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	mk := func(status domain.OrderStatus, deadline time.Time) *domain.Order {
		o := &domain.Order{
			Kind:          domain.KindQuestion,
			StudentID:     student.ID,
			Price:         10,
			Status:        status,
			PaymentStatus: domain.PaymentCompleted,
			PaymentHeld:   true,
			Question:      &domain.QuestionContent{ResponseHours: 1, Deadline: deadline, Text: "x"},
		}
		require.NoError(t, repo.Create(ctx, o))
		return o
	}
	overduePending := mk(domain.StatusPending, now.Add(-time.Hour))
	dueNow := mk(domain.StatusAccepted, now)
	mk(domain.StatusPending, now.Add(time.Hour))
	mk(domain.StatusCompleted, now.Add(-2*time.Hour))

	got, err := repo.ListOverdueQuestions(ctx, now, domain.StatusPending, domain.StatusAccepted)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, overduePending.ID, got[0].ID)
	assert.Equal(t, dueNow.ID, got[1].ID)
	require.NotNil(t, got[0].Question)
	assert.Equal(t, "x", got[0].Question.Text)
}

func TestOrderRepository_OneLiveBookingPerStudentAndSlot(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	student := createUser(t, db, domain.RoleStudent)
	teacher := createUser(t, db, domain.RoleTeacher)
	slot := &domain.TimeSlot{TeacherID: teacher.ID, MinStudents: 1, MaxStudents: 4, IsGroupSession: true, Status: domain.SlotAvailable}
	require.NoError(t, NewSlotRepository(db).Create(ctx, slot))
	repo := NewOrderRepository(db)

	book := func(status domain.OrderStatus) error {
		return repo.Create(ctx, &domain.Order{
			Kind:          domain.KindBooking,
			StudentID:     student.ID,
			TeacherID:     &teacher.ID,
			TimeSlotID:    &slot.ID,
			Price:         10,
			Status:        status,
			PaymentStatus: domain.PaymentPending,
		})
	}

	require.NoError(t, book(domain.StatusCancelledByStudent))
	require.NoError(t, book(domain.StatusPending))
	err := book(domain.StatusConfirmed)
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
}

func TestReviewRepository_EndorsementUnique(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	student := createUser(t, db, domain.RoleStudent)
	teacher := createUser(t, db, domain.RoleTeacher)
	repo := NewReviewRepository(db)

	require.NoError(t, repo.CreateEndorsement(ctx, &domain.Endorsement{StudentID: student.ID, TeacherID: teacher.ID}))
	err := repo.CreateEndorsement(ctx, &domain.Endorsement{StudentID: student.ID, TeacherID: teacher.ID})
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))

	cnt, err := repo.CountEndorsements(ctx, teacher.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, cnt)
}

func TestStatsRepository(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	student := createUser(t, db, domain.RoleStudent)
	teacher := createUser(t, db, domain.RoleTeacher)
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	old := now.AddDate(0, 0, -40)
	recent := now.AddDate(0, 0, -1)
	for _, at := range []time.Time{old, recent} {
		at := at
		o := &domain.Order{
			Kind:          domain.KindQuestion,
			StudentID:     student.ID,
			TeacherID:     &teacher.ID,
			Price:         10,
			Status:        domain.StatusCompleted,
			PaymentStatus: domain.PaymentCompleted,
			AnsweredAt:    &at,
			CompletedAt:   &at,
		}
		require.NoError(t, NewOrderRepository(db).Create(ctx, o))
	}
	require.NoError(t, NewReviewRepository(db).CreateEndorsement(ctx, &domain.Endorsement{StudentID: student.ID, TeacherID: teacher.ID}))

	stats := NewStatsRepository(db)

	endorse, err := stats.EndorsementCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, endorse[teacher.ID])

	completions, err := stats.CompletedQuestionsSince(ctx, now.AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.Equal(t, 1, completions[teacher.ID])

	answered, err := stats.LastAnswered(ctx)
	require.NoError(t, err)
	assert.True(t, answered[teacher.ID].Equal(recent))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, IsUniqueViolation(nil))
	assert.True(t, IsUniqueViolation(gorm.ErrDuplicatedKey))
	assert.True(t, IsUniqueViolation(fmt.Errorf("UNIQUE constraint failed: endorsements.student_id")))
	assert.False(t, IsUniqueViolation(fmt.Errorf("some other failure")))
}
