package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"mathtutor/internal/domain"
	"mathtutor/internal/pkg/apperr"
	"mathtutor/internal/pkg/clock"
	"mathtutor/internal/pkg/testdb"
	"mathtutor/internal/repository"
)

// Mock User Repository implementing the interface
type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserRepo) UpdateAvatar(ctx context.Context, id int64, url string) error {
	args := m.Called(ctx, id, url)
	return args.Error(0)
}

type mockJWT struct {
	mock.Mock
}

func (m *mockJWT) GenerateToken(userID int64, role string) (string, error) {
	args := m.Called(userID, role)
	return args.String(0), args.Error(1)
}

// captureMailer keeps the last code sent per email.
type captureMailer struct {
	codes map[string]string
}

func (m *captureMailer) SendVerificationCode(_ context.Context, email, code string) error {
	if m.codes == nil {
		m.codes = map[string]string{}
	}
	m.codes[email] = code
	return nil
}

func newMockedService(users *mockUserRepo, jwt *mockJWT) *Service {
	return NewService(users, nil, jwt, &captureMailer{}, Options{Pepper: "pepper"})
}

func TestRegister_Student(t *testing.T) {
	users := new(mockUserRepo)
	users.On("ExistsByEmail", mock.Anything, "ann@example.com").Return(false, nil)
	users.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Email == "ann@example.com" && u.Role == domain.RoleStudent
	})).Return(nil)

	svc := newMockedService(users, new(mockJWT))
	user, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "Ann",
		Email:    "  Ann@Example.com ",
		Password: "password123",
		Role:     "student",
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(user.DisplayID, "MT-"))
	assert.Len(t, user.DisplayID, 11)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("password123")))
	users.AssertExpectations(t)
}

func TestRegister_Rejections(t *testing.T) {
	users := new(mockUserRepo)
	users.On("ExistsByEmail", mock.Anything, "taken@example.com").Return(true, nil)
	users.On("ExistsByEmail", mock.Anything, mock.Anything).Return(false, nil)
	svc := newMockedService(users, new(mockJWT))
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Name: "Bo", Email: "taken@example.com", Password: "password123", Role: domain.RoleStudent})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	_, err = svc.Register(ctx, RegisterRequest{Name: "Bo", Email: "root@example.com", Password: "password123", Role: domain.RoleAdmin})
	assert.ErrorIs(t, err, ErrRoleNotAllowed)

	_, err = svc.Register(ctx, RegisterRequest{Name: "Bo", Email: "t@example.com", Password: "password123", Role: domain.RoleTeacher})
	assert.ErrorIs(t, err, ErrCodeRequired)

	_, err = svc.Register(ctx, RegisterRequest{Name: "Bo", Email: "t@example.com", Password: "short", Role: domain.RoleStudent})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	users := new(mockUserRepo)
	users.On("GetByEmail", mock.Anything, "ok@example.com").
		Return(&domain.User{ID: 7, Email: "ok@example.com", PasswordHash: string(hash), Role: domain.RoleTeacher}, nil)
	users.On("GetByEmail", mock.Anything, "banned@example.com").
		Return(&domain.User{ID: 8, PasswordHash: string(hash), Role: domain.RoleStudent, IsBanned: true}, nil)
	users.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, gorm.ErrRecordNotFound)

	jwt := new(mockJWT)
	jwt.On("GenerateToken", int64(7), "TEACHER").Return("signed", nil)

	svc := newMockedService(users, jwt)
	ctx := context.Background()

	res, err := svc.Login(ctx, LoginRequest{Email: "ok@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, "signed", res.AccessToken)
	assert.Equal(t, int64(7), res.User.ID)

	_, err = svc.Login(ctx, LoginRequest{Email: "ok@example.com", Password: "nope-nope"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, LoginRequest{Email: "ghost@example.com", Password: "password123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, LoginRequest{Email: "banned@example.com", Password: "password123"})
	assert.ErrorIs(t, err, ErrAccountBanned)

	jwt.AssertNumberOfCalls(t, "GenerateToken", 1)
}

type codeFixture struct {
	svc    *Service
	db     *gorm.DB
	mailer *captureMailer
	clk    *clock.Fake
}

func setupCodes(t *testing.T) *codeFixture {
	t.Helper()
	db := testdb.New(t)
	mailer := &captureMailer{}
	clk := clock.NewFake(time.Time{})
	svc := NewService(
		repository.NewUserRepository(db),
		repository.NewVerificationCodeRepository(db),
		new(mockJWT),
		mailer,
		Options{Tx: NewTransactor(db), Pepper: "pepper", CodeTTL: 10 * time.Minute, Clock: clk},
	)
	return &codeFixture{svc: svc, db: db, mailer: mailer, clk: clk}
}

func teacherRequest(email, code string) RegisterRequest {
	return RegisterRequest{Name: "Teach", Email: email, Password: "password123", Role: domain.RoleTeacher, Code: code}
}

func TestTeacherSignup_WithCode(t *testing.T) {
	f := setupCodes(t)
	ctx := context.Background()

	require.NoError(t, f.svc.RequestTeacherCode(ctx, TeacherCodeRequest{Email: "Tutor@Example.com"}))
	code := f.mailer.codes["tutor@example.com"]
	require.Regexp(t, `^\d{6}$`, code)

	user, err := f.svc.Register(ctx, teacherRequest("tutor@example.com", code))
	require.NoError(t, err)
	assert.Equal(t, domain.RoleTeacher, user.Role)

	err = f.svc.RequestTeacherCode(ctx, TeacherCodeRequest{Email: "tutor@example.com"})
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
}

func TestTeacherCode_ConsumedOnce(t *testing.T) {
	f := setupCodes(t)
	ctx := context.Background()
	require.NoError(t, f.svc.RequestTeacherCode(ctx, TeacherCodeRequest{Email: "a@example.com"}))
	code := f.mailer.codes["a@example.com"]

	row, err := f.svc.checkCode(ctx, "a@example.com", code)
	require.NoError(t, err)
	require.NoError(t, f.svc.markCodeUsed(ctx, f.svc.codes, row))
	assert.ErrorIs(t, f.svc.markCodeUsed(ctx, f.svc.codes, row), ErrInvalidCode)

	_, err = f.svc.checkCode(ctx, "a@example.com", code)
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestTeacherCode_Expires(t *testing.T) {
	f := setupCodes(t)
	ctx := context.Background()
	require.NoError(t, f.svc.RequestTeacherCode(ctx, TeacherCodeRequest{Email: "a@example.com"}))
	code := f.mailer.codes["a@example.com"]

	f.clk.Advance(11 * time.Minute)
	_, err := f.svc.Register(ctx, teacherRequest("a@example.com", code))
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestTeacherCode_AttemptLimit(t *testing.T) {
	f := setupCodes(t)
	ctx := context.Background()
	require.NoError(t, f.svc.RequestTeacherCode(ctx, TeacherCodeRequest{Email: "a@example.com"}))
	code := f.mailer.codes["a@example.com"]

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	check := func(c string) error {
		_, err := f.svc.checkCode(ctx, "a@example.com", c)
		return err
	}
	for i := 0; i < maxCodeAttempts-1; i++ {
		assert.ErrorIs(t, check(wrong), ErrInvalidCode)
	}
	assert.ErrorIs(t, check(wrong), ErrTooManyAttempts)
	assert.ErrorIs(t, check(code), ErrTooManyAttempts)

	assert.ErrorIs(t, check("12ab56"), ErrInvalidCodeFormat)
}

// existsBlind hides existing accounts so Register reaches the insert, as
// when another signup for the same email commits in between.
type existsBlind struct {
	*repository.UserRepository
}

func (existsBlind) ExistsByEmail(context.Context, string) (bool, error) { return false, nil }

func TestTeacherSignup_FailedInsertKeepsCode(t *testing.T) {
	f := setupCodes(t)
	ctx := context.Background()
	require.NoError(t, f.svc.RequestTeacherCode(ctx, TeacherCodeRequest{Email: "race@example.com"}))
	code := f.mailer.codes["race@example.com"]

	users := repository.NewUserRepository(f.db)
	svc := NewService(existsBlind{users}, repository.NewVerificationCodeRepository(f.db), new(mockJWT), f.mailer,
		Options{Tx: NewTransactor(f.db), Pepper: "pepper", Clock: f.clk})

	rival := &domain.User{Email: "race@example.com", PasswordHash: "x", Name: "Rival", Role: domain.RoleStudent, DisplayID: NewDisplayID()}
	require.NoError(t, users.Create(ctx, rival))

	_, err := svc.Register(ctx, teacherRequest("race@example.com", code))
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)

	// the rolled back insert leaves the code unused
	require.NoError(t, f.db.Delete(&domain.User{}, rival.ID).Error)
	user, err := svc.Register(ctx, teacherRequest("race@example.com", code))
	require.NoError(t, err)
	assert.Equal(t, domain.RoleTeacher, user.Role)

	_, err = f.svc.checkCode(ctx, "race@example.com", code)
	assert.ErrorIs(t, err, ErrInvalidCode)
}
