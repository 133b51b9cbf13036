// Package password hashes and verifies local account passwords.
package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/fastygo/taskboard/domain"
)

// MinLength is the shortest accepted password, counted in characters.
const MinLength = 6

// Hasher turns passwords into salted one-way digests and checks them.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// Bcrypt implements Hasher with bcrypt. Each Hash call draws a fresh salt.
type Bcrypt struct {
	cost int
}

// NewBcrypt returns a bcrypt hasher. Out-of-range costs fall back to
// bcrypt.DefaultCost.
func NewBcrypt(cost int) *Bcrypt {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Bcrypt{cost: cost}
}

func (b *Bcrypt) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), b.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", domain.Invalid("password", "must be at most 72 bytes")
		}
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether password produced hash. Malformed hashes simply
// fail verification.
func (b *Bcrypt) Verify(password, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

var _ Hasher = (*Bcrypt)(nil)
