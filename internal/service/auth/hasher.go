package auth

import (
	"fmt"
	"strings"
)

const (
	HasherBcrypt   = "bcrypt"
	HasherArgon2id = "argon2id"
)

type PasswordHasher interface {
	// Generate Hash from password
	Hash(password string) (string, error)

	// Compare known hashedPassword and user provided password
	// Must be protected against timing attacks
	Compare(hashedPassword string, password string) error
}

// Hasher used when nothing is configured
var DefaultHasher = NewHasher(BcryptHasher{})

// Hashes new passwords with the preferred hasher
// Compares with whichever hasher produced the stored hash, so switching the preferred one keeps old users able to log in
type Hasher struct {
	preferred PasswordHasher
	bcrypt    BcryptHasher
	argon2id  Argon2idHasher
}

func NewHasher(preferred PasswordHasher) *Hasher {
	return &Hasher{
		preferred: preferred,
		argon2id:  NewArgon2idHasher(),
	}
}

// Build hasher by its configured name
func HasherByName(name string) (*Hasher, error) {
	switch strings.ToLower(name) {
	case HasherBcrypt, "":
		return NewHasher(BcryptHasher{}), nil
	case HasherArgon2id:
		return NewHasher(NewArgon2idHasher()), nil
	default:
		return nil, fmt.Errorf("unknown password hasher %q, expected %q or %q", name, HasherBcrypt, HasherArgon2id)
	}
}

func (h *Hasher) Hash(password string) (string, error) {
	return h.preferred.Hash(password)
}

func (h *Hasher) Compare(hashedPassword string, password string) error {
	if strings.HasPrefix(hashedPassword, argon2idPrefix) {
		return h.argon2id.Compare(hashedPassword, password)
	}
	return h.bcrypt.Compare(hashedPassword, password)
}
