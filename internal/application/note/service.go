package note

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-notes-api/internal/domain"
	"github.com/go-notes-api/internal/pkg/id"
)

type Service interface {
	Create(ctx context.Context, ownerID string, req domain.CreateNoteRequest) (*domain.Note, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Note, error)
	Delete(ctx context.Context, ownerID, noteID string) error
}

type noteStore interface {
	Put(ctx context.Context, n *domain.Note) error
	Get(ctx context.Context, noteID string) (*domain.Note, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Note, error)
	Delete(ctx context.Context, noteID string) error
}

type service struct {
	repo noteStore
}

func NewService(repo noteStore) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, ownerID string, req domain.CreateNoteRequest) (*domain.Note, error) {
	title := strings.TrimSpace(req.Title)
	description := strings.TrimSpace(req.Description)
	if title == "" {
		return nil, fmt.Errorf("title is required: %w", domain.ErrBadRequest)
	}
	if description == "" {
		return nil, fmt.Errorf("description is required: %w", domain.ErrBadRequest)
	}

	now := time.Now().UTC()
	n := &domain.Note{
		NoteID:      id.New(),
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Put(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *service) ListByOwner(ctx context.Context, ownerID string) ([]domain.Note, error) {
	notes, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if notes == nil {
		notes = []domain.Note{}
	}
	return notes, nil
}

func (s *service) Delete(ctx context.Context, ownerID, noteID string) error {
	n, err := s.repo.Get(ctx, noteID)
	if err != nil {
		return err
	}
	// A foreign note reads as absent; ownership is not disclosed.
	if n.OwnerID != ownerID {
		return fmt.Errorf("note not found: %w", domain.ErrNotFound)
	}
	return s.repo.Delete(ctx, noteID)
}
