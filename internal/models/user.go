package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID             uuid.UUID
	CreatedAt      time.Time
	Name           string
	Email          string
	Username       string
	HashedPassword string
}
