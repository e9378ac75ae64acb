package user

import (
	"time"

	"github.com/google/uuid"
)

// NewFromRegisterRequest builds a User from the register DTO. The password
// hash is supplied by the caller so this package never sees the plaintext.
func NewFromRegisterRequest(req RegisterRequest, passwordHash string) User {
	now := time.Now().UTC()

	return User{
		ID:           uuid.NewString(),
		Username:     req.Username,
		FullName:     req.FullName,
		Email:        req.Email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
