package models

// JWTClaims are the claims the API reads from bearer tokens.
type JWTClaims struct {
	Sub string `json:"sub"`
	Iss string `json:"iss,omitempty"`
	Exp int64  `json:"exp"`
	Iat int64  `json:"iat"`
}
