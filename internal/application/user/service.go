package user

import (
	"context"

	"github.com/go-notes-api/internal/domain"
)

type Service interface {
	// Profile returns the account plus all of its notes, for GET /user.
	Profile(ctx context.Context, userID string) (*domain.User, []domain.Note, error)
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

type noteStore interface {
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Note, error)
}

type service struct {
	userRepo userStore
	noteRepo noteStore
}

func NewService(userRepo userStore, noteRepo noteStore) Service {
	return &service{userRepo: userRepo, noteRepo: noteRepo}
}

func (s *service) Profile(ctx context.Context, userID string) (*domain.User, []domain.Note, error) {
	u, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	notes, err := s.noteRepo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if notes == nil {
		notes = []domain.Note{}
	}
	return u, notes, nil
}
