package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Username     string    `json:"username" gorm:"uniqueIndex;not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	OtherInfo    string    `json:"other_info"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Identity is the authenticated caller of a request, resolved from a session token.
type Identity struct {
	UserID    uuid.UUID
	Username  string
	Email     string
	OtherInfo string
}

// IdentityOf builds the request identity for a stored user.
func IdentityOf(u *User) *Identity {
	return &Identity{
		UserID:    u.ID,
		Username:  u.Username,
		Email:     u.Email,
		OtherInfo: u.OtherInfo,
	}
}
