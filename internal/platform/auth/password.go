package auth

import (
	"errors"
	"strconv"

	"golang.org/x/crypto/bcrypt"
	apperrors "riffraff/internal/pkg/errors"
)

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

// Hasher hashes and verifies passwords with bcrypt. Digests are
// self-describing ($2a$<cost>$<salt+hash>) so the cost can change without
// invalidating stored passwords.
type Hasher struct {
	cost int
}

func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash rejects passwords bcrypt cannot represent with a ValidationError.
func (h *Hasher) Hash(password string) (string, error) {
	if len(password) > MaxPasswordBytes {
		return "", tooLong()
	}
	digest, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", tooLong()
	}
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify reports whether password matches digest. Malformed digests and
// mismatches both return false.
func (h *Hasher) Verify(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}

func tooLong() error {
	return apperrors.NewValidation("password", "must be at most "+strconv.Itoa(MaxPasswordBytes)+" bytes")
}
