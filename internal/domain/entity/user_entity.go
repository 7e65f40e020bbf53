package entity

import (
	"time"
)

// User is the aggregate root for the users domain.
// Password holds a bcrypt hash and must never be serialized outward.
type User struct {
	ID          string
	Email       string
	Password    string
	FirstName   string
	LastName    string
	IsStaff     bool
	IsSuperuser bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
