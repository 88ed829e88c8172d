package http

import (
	"github.com/go-notes-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/go-notes-api/internal/infrastructure/jwt"
	"github.com/go-notes-api/internal/infrastructure/memstore"
	"github.com/go-notes-api/internal/infrastructure/smtp"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo    *dynamo.UserRepo
	NoteRepo    *dynamo.NoteRepo
	OTPStore    *memstore.OTPStore
	Mailer      smtp.Mailer
	JWTProvider *jwtinfra.Provider
}
