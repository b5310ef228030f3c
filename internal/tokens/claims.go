package tokens

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

type SessionClaims struct {
	UserID       *uint  `json:"id,omitempty"`
	Username     string `json:"username"`
	ProfileImage string `json:"profileImage,omitempty"`
	Role         string `json:"role"`
	jwt.RegisteredClaims
}

func (c SessionClaims) Principal() Principal {
	if c.UserID == nil {
		return AdminPrincipal{Name: c.Username}
	}
	return UserPrincipal{
		ID:           *c.UserID,
		Name:         c.Username,
		ProfileImage: c.ProfileImage,
		UserRole:     c.Role,
	}
}
