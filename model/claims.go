package model

import "github.com/golang-jwt/jwt/v5"

type AppClaims struct {
	OwnerID string `json:"owner_id"`
	jwt.RegisteredClaims
}
