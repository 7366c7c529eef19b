package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// RevokedToken is a blacklist entry for a session token that was logged out
// before its natural expiry. The token itself is not stored, only its digest.
type RevokedToken struct {
	TokenHash string    `json:"-" gorm:"primary_key;size:64"`
	ExpiresAt time.Time `json:"expiresAt" gorm:"not null;index"`
	CreatedAt time.Time `json:"createdAt"`
}

// HashToken returns the hex SHA-256 digest used as the revocation key.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
