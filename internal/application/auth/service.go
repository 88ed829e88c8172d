package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/go-notes-api/internal/domain"
	"github.com/go-notes-api/internal/infrastructure/memstore"
	"github.com/go-notes-api/internal/pkg/id"
)

const (
	otpSubject = "Your OTP Code"

	// Fallback when neither the account nor the caller provides a name.
	defaultDisplayName = "there"
)

// SendOTPResult tells the caller whether the address already has an account,
// so the UI can route to login or signup.
type SendOTPResult struct {
	UserExists bool
}

// VerifyResult carries the resolved account and its signed session token.
type VerifyResult struct {
	User  *domain.User
	Token string
}

type Service interface {
	// SendOTP issues a code for an existing account (login flow).
	SendOTP(ctx context.Context, req domain.SendOTPRequest) (*SendOTPResult, error)
	// Signup issues a code for an address that must not have an account yet.
	Signup(ctx context.Context, req domain.SignupRequest) (*SendOTPResult, error)
	// VerifyOTP consumes a pending code, resolves (or creates) the account
	// and returns a signed session token.
	VerifyOTP(ctx context.Context, req domain.VerifyOTPRequest) (*VerifyResult, error)
}

type userStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Put(ctx context.Context, u *domain.User) error
}

type mailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

type tokenSigner interface {
	Sign(userID, email, name string) (string, error)
}

type service struct {
	userRepo    userStore
	otpStore    *memstore.OTPStore
	mailer      mailSender
	jwtProvider tokenSigner
	validity    time.Duration
	cooldown    time.Duration
	sendTimeout time.Duration
}

type ServiceDeps struct {
	UserRepo    userStore
	OTPStore    *memstore.OTPStore
	Mailer      mailSender
	JWTProvider tokenSigner
	OTPValidity time.Duration
	OTPCooldown time.Duration
	SendTimeout time.Duration
}

func NewService(deps ServiceDeps) Service {
	return &service{
		userRepo:    deps.UserRepo,
		otpStore:    deps.OTPStore,
		mailer:      deps.Mailer,
		jwtProvider: deps.JWTProvider,
		validity:    deps.OTPValidity,
		cooldown:    deps.OTPCooldown,
		sendTimeout: deps.SendTimeout,
	}
}

func (s *service) SendOTP(ctx context.Context, req domain.SendOTPRequest) (*SendOTPResult, error) {
	email := domain.NormalizeEmail(req.Email)

	u, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		// Only a genuine miss routes to signup; a lookup failure must not.
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("no account for this email: %w", domain.ErrNotFound)
		}
		return nil, err
	}

	name := u.Name
	if name == "" {
		name = req.Name
	}
	if name == "" {
		name = defaultDisplayName
	}

	if err := s.issue(ctx, email, name); err != nil {
		return nil, err
	}
	return &SendOTPResult{UserExists: true}, nil
}

func (s *service) Signup(ctx context.Context, req domain.SignupRequest) (*SendOTPResult, error) {
	email := domain.NormalizeEmail(req.Email)

	_, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return nil, fmt.Errorf("account already exists, please login: %w", domain.ErrConflict)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	name := req.Name
	if name == "" {
		name = defaultDisplayName
	}

	if err := s.issue(ctx, email, name); err != nil {
		return nil, err
	}
	return &SendOTPResult{UserExists: false}, nil
}

// issue is the shared issuance primitive: cooldown check, code generation,
// delivery, store write. The per-email lock is held across all four steps so
// two concurrent requests for the same address cannot both pass the cooldown
// check and trigger two sends.
func (s *service) issue(ctx context.Context, email, displayName string) error {
	unlock := s.otpStore.LockEmail(email)
	defer unlock()

	now := time.Now().UTC()
	if rec, ok := s.otpStore.Get(email); ok && now.Sub(rec.IssuedAt) < s.cooldown {
		return fmt.Errorf("code already sent, wait before requesting again: %w", domain.ErrRateLimited)
	}

	code, err := generateCode()
	if err != nil {
		return err
	}

	body := fmt.Sprintf("Hello %s,\n\nYour one-time code is %s. It expires in %d minutes.",
		displayName, code, int(s.validity.Minutes()))

	sendCtx, cancel := context.WithTimeout(ctx, s.sendTimeout)
	defer cancel()
	if err := s.mailer.Send(sendCtx, email, otpSubject, body); err != nil {
		return fmt.Errorf("send otp email: %v: %w", err, domain.ErrDeliveryFailed)
	}

	// Write only after a successful send; a code that never left the process
	// must not be able to win a later verification.
	s.otpStore.Put(email, memstore.OTPRecord{
		Code:      code,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.validity),
	})
	return nil
}

func (s *service) VerifyOTP(ctx context.Context, req domain.VerifyOTPRequest) (*VerifyResult, error) {
	email := domain.NormalizeEmail(req.Email)

	rec, ok := s.otpStore.Get(email)
	if !ok {
		return nil, fmt.Errorf("no code pending for this email: %w", domain.ErrNoPendingCode)
	}

	// The record survives a mismatch so the user can retype within the window.
	if rec.Code != req.OTP {
		return nil, fmt.Errorf("invalid code: %w", domain.ErrCodeMismatch)
	}

	if time.Now().UTC().After(rec.ExpiresAt) {
		s.otpStore.Delete(email)
		return nil, fmt.Errorf("code expired, request a new one: %w", domain.ErrOTPExpired)
	}

	// Single use.
	s.otpStore.Delete(email)

	u, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		// Create an account only on a confirmed miss. A lookup failure here
		// must not mint a duplicate user for an address that has one.
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		name := req.Name
		if name == "" {
			name = defaultDisplayName
		}
		now := time.Now().UTC()
		u = &domain.User{
			UserID:    id.New(),
			Name:      name,
			Email:     email,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.userRepo.Put(ctx, u); err != nil {
			return nil, err
		}
	}

	token, err := s.jwtProvider.Sign(u.UserID, u.Email, u.Name)
	if err != nil {
		return nil, err
	}
	return &VerifyResult{User: u, Token: token}, nil
}

// generateCode draws a 6-digit code uniformly from [100000, 999999].
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", 100000+n.Int64()), nil
}
