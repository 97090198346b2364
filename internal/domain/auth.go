package domain

import (
	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
)

type Claim struct {
	UserID     uuid.UUID  `json:"user_id"`
	Username   string     `json:"username"`
	Permission Permission `json:"permission"`
	Scope      string     `json:"scope"`
	jwt.StandardClaims
}
