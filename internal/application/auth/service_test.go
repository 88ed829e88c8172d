package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/go-notes-api/internal/domain"
	"github.com/go-notes-api/internal/infrastructure/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserStore) Put(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}

type mockMailer struct{ mock.Mock }

func (m *mockMailer) Send(ctx context.Context, to, subject, body string) error {
	return m.Called(ctx, to, subject, body).Error(0)
}

type mockSigner struct{ mock.Mock }

func (m *mockSigner) Sign(userID, email, name string) (string, error) {
	args := m.Called(userID, email, name)
	return args.String(0), args.Error(1)
}

// --- builder ---

func newTestService(us *mockUserStore, store *memstore.OTPStore, ml *mockMailer, signer *mockSigner) Service {
	return NewService(ServiceDeps{
		UserRepo:    us,
		OTPStore:    store,
		Mailer:      ml,
		JWTProvider: signer,
		OTPValidity: 5 * time.Minute,
		OTPCooldown: time.Minute,
		SendTimeout: 5 * time.Second,
	})
}

func seedRecord(store *memstore.OTPStore, email, code string, age time.Duration) memstore.OTPRecord {
	issued := time.Now().UTC().Add(-age)
	rec := memstore.OTPRecord{Code: code, IssuedAt: issued, ExpiresAt: issued.Add(5 * time.Minute)}
	store.Put(email, rec)
	return rec
}

// --- SendOTP ---

func TestSendOTP_UserNotFound(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "x@x.com").Return(nil, domain.ErrNotFound)

	svc := newTestService(us, memstore.NewOTPStore(), nil, nil)
	_, err := svc.SendOTP(context.Background(), domain.SendOTPRequest{Email: "x@x.com"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestSendOTP_HappyPath(t *testing.T) {
	us := &mockUserStore{}
	ml := &mockMailer{}
	store := memstore.NewOTPStore()

	us.On("GetByEmail", mock.Anything, "a@b.com").Return(&domain.User{UserID: "u1", Name: "Alice", Email: "a@b.com"}, nil)
	var sentBody string
	ml.On("Send", mock.Anything, "a@b.com", "Your OTP Code", mock.Anything).
		Run(func(args mock.Arguments) { sentBody = args.String(3) }).
		Return(nil)

	svc := newTestService(us, store, ml, nil)
	res, err := svc.SendOTP(context.Background(), domain.SendOTPRequest{Email: "a@b.com"})

	require.NoError(t, err)
	assert.True(t, res.UserExists)

	rec, ok := store.Get("a@b.com")
	require.True(t, ok)
	assert.Len(t, rec.Code, 6)
	assert.Contains(t, sentBody, rec.Code)
	assert.Contains(t, sentBody, "Hello Alice")
	assert.WithinDuration(t, rec.IssuedAt.Add(5*time.Minute), rec.ExpiresAt, time.Second)
	ml.AssertExpectations(t)
}

func TestSendOTP_NormalizesEmail(t *testing.T) {
	us := &mockUserStore{}
	ml := &mockMailer{}
	store := memstore.NewOTPStore()

	us.On("GetByEmail", mock.Anything, "a@b.com").Return(&domain.User{UserID: "u1", Email: "a@b.com"}, nil)
	ml.On("Send", mock.Anything, "a@b.com", mock.Anything, mock.Anything).Return(nil)

	svc := newTestService(us, store, ml, nil)
	_, err := svc.SendOTP(context.Background(), domain.SendOTPRequest{Email: "  A@B.com "})

	require.NoError(t, err)
	_, ok := store.Get("a@b.com")
	assert.True(t, ok)
}

func TestSendOTP_WithinCooldown_RateLimited(t *testing.T) {
	us := &mockUserStore{}
	ml := &mockMailer{}
	store := memstore.NewOTPStore()

	us.On("GetByEmail", mock.Anything, "a@b.com").Return(&domain.User{UserID: "u1"}, nil)
	seedRecord(store, "a@b.com", "111111", 10*time.Second)

	svc := newTestService(us, store, ml, nil)
	_, err := svc.SendOTP(context.Background(), domain.SendOTPRequest{Email: "a@b.com"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrRateLimited))
	ml.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	// The pending record is untouched.
	rec, ok := store.Get("a@b.com")
	require.True(t, ok)
	assert.Equal(t, "111111", rec.Code)
}

func TestSendOTP_CooldownElapsed_ReissuesAndInvalidatesOldCode(t *testing.T) {
	us := &mockUserStore{}
	ml := &mockMailer{}
	store := memstore.NewOTPStore()

	us.On("GetByEmail", mock.Anything, "a@b.com").Return(&domain.User{UserID: "u1"}, nil)
	old := seedRecord(store, "a@b.com", "111111", 2*time.Minute)
	ml.On("Send", mock.Anything, "a@b.com", mock.Anything, mock.Anything).Return(nil)

	svc := newTestService(us, store, ml, nil)
	_, err := svc.SendOTP(context.Background(), domain.SendOTPRequest{Email: "a@b.com"})

	require.NoError(t, err)
	rec, ok := store.Get("a@b.com")
	require.True(t, ok)
	assert.True(t, rec.IssuedAt.After(old.IssuedAt))
}

func TestSendOTP_DeliveryFailure_NoStoreWrite(t *testing.T) {
	us := &mockUserStore{}
	ml := &mockMailer{}
	store := memstore.NewOTPStore()

	us.On("GetByEmail", mock.Anything, "a@b.com").Return(&domain.User{UserID: "u1"}, nil)
	ml.On("Send", mock.Anything, "a@b.com", mock.Anything, mock.Anything).Return(errors.New("relay down"))

	svc := newTestService(us, store, ml, nil)
	_, err := svc.SendOTP(context.Background(), domain.SendOTPRequest{Email: "a@b.com"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDeliveryFailed))
	assert.Equal(t, 0, store.Len())
}

func TestSendOTP_LookupFailure_NotMisreadAsAbsent(t *testing.T) {
	us := &mockUserStore{}
	ml := &mockMailer{}
	us.On("GetByEmail", mock.Anything, "a@b.com").Return(nil, errors.New("dynamo: connection reset"))

	svc := newTestService(us, memstore.NewOTPStore(), ml, nil)
	_, err := svc.SendOTP(context.Background(), domain.SendOTPRequest{Email: "a@b.com"})

	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrNotFound))
	ml.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// --- Signup ---

func TestSignup_AccountExists_Conflict(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "a@b.com").Return(&domain.User{UserID: "u1"}, nil)

	svc := newTestService(us, memstore.NewOTPStore(), nil, nil)
	_, err := svc.Signup(context.Background(), domain.SignupRequest{Name: "Alice", Email: "a@b.com"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestSignup_HappyPath(t *testing.T) {
	us := &mockUserStore{}
	ml := &mockMailer{}
	store := memstore.NewOTPStore()

	us.On("GetByEmail", mock.Anything, "new@x.com").Return(nil, domain.ErrNotFound)
	var sentBody string
	ml.On("Send", mock.Anything, "new@x.com", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { sentBody = args.String(3) }).
		Return(nil)

	svc := newTestService(us, store, ml, nil)
	res, err := svc.Signup(context.Background(), domain.SignupRequest{Name: "Bob", Email: "new@x.com"})

	require.NoError(t, err)
	assert.False(t, res.UserExists)
	assert.Contains(t, sentBody, "Hello Bob")
	_, ok := store.Get("new@x.com")
	assert.True(t, ok)
}

func TestSignup_WithinCooldown_RateLimited(t *testing.T) {
	us := &mockUserStore{}
	store := memstore.NewOTPStore()

	us.On("GetByEmail", mock.Anything, "new@x.com").Return(nil, domain.ErrNotFound)
	seedRecord(store, "new@x.com", "111111", 30*time.Second)

	svc := newTestService(us, store, nil, nil)
	_, err := svc.Signup(context.Background(), domain.SignupRequest{Name: "Bob", Email: "new@x.com"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrRateLimited))
}

func TestSignup_LookupFailure_NoIssuance(t *testing.T) {
	us := &mockUserStore{}
	ml := &mockMailer{}
	store := memstore.NewOTPStore()
	us.On("GetByEmail", mock.Anything, "new@x.com").Return(nil, errors.New("dynamo: connection reset"))

	svc := newTestService(us, store, ml, nil)
	_, err := svc.Signup(context.Background(), domain.SignupRequest{Name: "Bob", Email: "new@x.com"})

	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrConflict))
	ml.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, 0, store.Len())
}

// --- VerifyOTP ---

func TestVerifyOTP_NoPendingCode(t *testing.T) {
	svc := newTestService(nil, memstore.NewOTPStore(), nil, nil)
	_, err := svc.VerifyOTP(context.Background(), domain.VerifyOTPRequest{Email: "a@b.com", OTP: "123456"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNoPendingCode))
}

func TestVerifyOTP_Mismatch_KeepsRecordForRetry(t *testing.T) {
	us := &mockUserStore{}
	signer := &mockSigner{}
	store := memstore.NewOTPStore()
	seedRecord(store, "a@b.com", "123456", 0)

	svc := newTestService(us, store, nil, signer)
	_, err := svc.VerifyOTP(context.Background(), domain.VerifyOTPRequest{Email: "a@b.com", OTP: "654321"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrCodeMismatch))

	// Retry with the correct code within the window still works.
	us.On("GetByEmail", mock.Anything, "a@b.com").Return(&domain.User{UserID: "u1", Email: "a@b.com", Name: "Alice"}, nil)
	signer.On("Sign", "u1", "a@b.com", "Alice").Return("tok", nil)

	res, err := svc.VerifyOTP(context.Background(), domain.VerifyOTPRequest{Email: "a@b.com", OTP: "123456"})
	require.NoError(t, err)
	assert.Equal(t, "tok", res.Token)
}

func TestVerifyOTP_Expired_DeletesRecord(t *testing.T) {
	store := memstore.NewOTPStore()
	issued := time.Now().UTC().Add(-10 * time.Minute)
	store.Put("a@b.com", memstore.OTPRecord{Code: "123456", IssuedAt: issued, ExpiresAt: issued.Add(5 * time.Minute)})

	svc := newTestService(nil, store, nil, nil)
	_, err := svc.VerifyOTP(context.Background(), domain.VerifyOTPRequest{Email: "a@b.com", OTP: "123456"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrOTPExpired))
	assert.Equal(t, 0, store.Len())

	// Same code again now reports no pending code.
	_, err = svc.VerifyOTP(context.Background(), domain.VerifyOTPRequest{Email: "a@b.com", OTP: "123456"})
	assert.True(t, errors.Is(err, domain.ErrNoPendingCode))
}

func TestVerifyOTP_ExistingUser_SingleUse(t *testing.T) {
	us := &mockUserStore{}
	signer := &mockSigner{}
	store := memstore.NewOTPStore()
	seedRecord(store, "existing@x.com", "123456", 0)

	us.On("GetByEmail", mock.Anything, "existing@x.com").Return(&domain.User{UserID: "u1", Email: "existing@x.com", Name: "Alice"}, nil)
	signer.On("Sign", "u1", "existing@x.com", "Alice").Return("tok", nil)

	svc := newTestService(us, store, nil, signer)
	res, err := svc.VerifyOTP(context.Background(), domain.VerifyOTPRequest{Email: "existing@x.com", OTP: "123456"})

	require.NoError(t, err)
	assert.Equal(t, "u1", res.User.UserID)
	assert.Equal(t, "tok", res.Token)
	// No account was created for an existing user.
	us.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)

	// The code is consumed.
	_, err = svc.VerifyOTP(context.Background(), domain.VerifyOTPRequest{Email: "existing@x.com", OTP: "123456"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNoPendingCode))
}

func TestVerifyOTP_NewUser_CreatesAccount(t *testing.T) {
	us := &mockUserStore{}
	signer := &mockSigner{}
	store := memstore.NewOTPStore()
	seedRecord(store, "new@x.com", "123456", 0)

	us.On("GetByEmail", mock.Anything, "new@x.com").Return(nil, domain.ErrNotFound)
	var created *domain.User
	us.On("Put", mock.Anything, mock.AnythingOfType("*domain.User")).
		Run(func(args mock.Arguments) { created = args.Get(1).(*domain.User) }).
		Return(nil)
	signer.On("Sign", mock.Anything, "new@x.com", "Bob").Return("tok", nil)

	svc := newTestService(us, store, nil, signer)
	res, err := svc.VerifyOTP(context.Background(), domain.VerifyOTPRequest{Email: "new@x.com", OTP: "123456", Name: "Bob"})

	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, "Bob", created.Name)
	assert.Equal(t, "new@x.com", created.Email)
	assert.NotEmpty(t, created.UserID)
	assert.Equal(t, created.UserID, res.User.UserID)
}

func TestVerifyOTP_LookupFailure_NoAccountCreated(t *testing.T) {
	us := &mockUserStore{}
	store := memstore.NewOTPStore()
	seedRecord(store, "a@b.com", "123456", 0)

	us.On("GetByEmail", mock.Anything, "a@b.com").Return(nil, errors.New("dynamo: connection reset"))

	svc := newTestService(us, store, nil, nil)
	_, err := svc.VerifyOTP(context.Background(), domain.VerifyOTPRequest{Email: "a@b.com", OTP: "123456", Name: "Bob"})

	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrNotFound))
	us.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestVerifyOTP_NormalizesEmail(t *testing.T) {
	us := &mockUserStore{}
	signer := &mockSigner{}
	store := memstore.NewOTPStore()
	seedRecord(store, "a@b.com", "123456", 0)

	us.On("GetByEmail", mock.Anything, "a@b.com").Return(&domain.User{UserID: "u1", Email: "a@b.com", Name: "Alice"}, nil)
	signer.On("Sign", "u1", "a@b.com", "Alice").Return("tok", nil)

	svc := newTestService(us, store, nil, signer)
	_, err := svc.VerifyOTP(context.Background(), domain.VerifyOTPRequest{Email: " A@b.COM ", OTP: "123456"})
	require.NoError(t, err)
}

// --- code generation ---

func TestGenerateCode_SixDigitRange(t *testing.T) {
	for i := 0; i < 100; i++ {
		code, err := generateCode()
		require.NoError(t, err)
		require.Len(t, code, 6)
		assert.False(t, strings.HasPrefix(code, "0"))
	}
}
