package domain

import "time"

type Note struct {
	NoteID      string    `json:"id" dynamodbav:"note_id"`
	OwnerID     string    `json:"owner_id" dynamodbav:"owner_id"`
	Title       string    `json:"title" dynamodbav:"title"`
	Description string    `json:"description" dynamodbav:"description"`
	CreatedAt   time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt   time.Time `json:"updated" dynamodbav:"updated_at"`
}

type CreateNoteRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
}

type DeleteNoteRequest struct {
	ID string `json:"id" validate:"required"`
}
