package auth

import (
	"errors"

	"github.com/alexedwards/argon2id"
)

const argon2idPrefix = "$argon2id$"

var ErrPasswordMismatch = errors.New("password does not match")

// Argon2id password hasher, encodes params and salt into the hash itself
type Argon2idHasher struct {
	params *argon2id.Params
}

func NewArgon2idHasher() Argon2idHasher {
	return Argon2idHasher{params: argon2id.DefaultParams}
}

func (h Argon2idHasher) Hash(password string) (string, error) {
	return argon2id.CreateHash(password, h.params)
}

func (h Argon2idHasher) Compare(hashedPassword string, password string) error {
	match, _, err := argon2id.CheckHash(password, hashedPassword)
	if err != nil {
		return err
	}
	if !match {
		return ErrPasswordMismatch
	}
	return nil
}
