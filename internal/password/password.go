// Package password turns plaintext passwords into salted one-way hashes
// at the record-creation boundary.
//
// bcrypt output is self-describing: "$2a$<cost>$<22-char salt><31-char
// digest>". The salt is generated per call and stored inside the hash,
// so a record only needs the single string.
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MaxLength is the longest secret bcrypt accepts, in bytes.
const MaxLength = 72

// ErrTooLong is returned by Hash when the password exceeds MaxLength.
var ErrTooLong = errors.New("password: longer than 72 bytes")

// Hasher hashes passwords with a fixed bcrypt cost.
type Hasher struct {
	cost int
}

// NewHasher returns a Hasher using cost. A cost outside bcrypt's
// accepted range falls back to bcrypt.DefaultCost.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash returns the bcrypt hash of plain.
func (h *Hasher) Hash(plain string) (string, error) {
	if len(plain) > MaxLength {
		return "", ErrTooLong
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", ErrTooLong
		}
		return "", fmt.Errorf("password.Hash: %w", err)
	}
	return string(hashed), nil
}

// Verify reports whether plain matches hash.
func Verify(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
