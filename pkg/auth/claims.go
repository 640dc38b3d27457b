package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	CustomerID int64
	Phone      string
	JTI        string
}

// AccessTokenClaims represents the typed JWT issued to the storefront client.
type AccessTokenClaims struct {
	CustomerID int64  `json:"customer_id"`
	Phone      string `json:"phone"`
	jwt.RegisteredClaims
}
