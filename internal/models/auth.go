package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	Login  string   `json:"login"`
	Name   string   `json:"name"`
	Role   UserRole `json:"role"`
	Locale string   `json:"locale,omitempty"`
	jwt.RegisteredClaims
}

// Viewer is the identity a read is performed for. The zero Viewer is anonymous.
type Viewer struct {
	Login  string
	Name   string
	Role   UserRole
	Locale string
}

// ViewerFromClaims maps token claims to a Viewer; nil claims give an anonymous viewer.
func ViewerFromClaims(claims *JWTClaims, locale string) Viewer {
	if claims == nil {
		return Viewer{Locale: locale}
	}
	return Viewer{Login: claims.Login, Name: claims.Name, Role: claims.Role, Locale: locale}
}

// IsLoggedIn reports whether the viewer is authenticated.
func (v Viewer) IsLoggedIn() bool {
	return v.Login != ""
}

// IsAdmin reports whether the viewer administers issues and profiles.
func (v Viewer) IsAdmin() bool {
	return v.Role == RoleAdmin
}
