package models

import (
	"time"
)

// Article written by a registered user
// Author holds the username at the moment of creation and never changes
type Article struct {
	ID        int64
	CreatedAt time.Time
	Title     string
	Body      string
	Author    string
}
