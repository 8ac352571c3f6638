package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Principal identifies the caller of a protected endpoint.
type Principal struct {
	Subject string
	Role    string
}

type Parser struct {
	secret []byte
}

func NewParser(secret string) *Parser {
	return &Parser{secret: []byte(secret)}
}

// Parse validates an HMAC-signed access token and extracts the principal.
func (p *Parser) Parse(raw string) (Principal, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %s", t.Method.Alg())
		}
		return p.secret, nil
	})
	if err != nil {
		return Principal{}, err
	}
	if !token.Valid {
		return Principal{}, fmt.Errorf("invalid token")
	}

	principal := Principal{}
	if sub, ok := claims["sub"].(string); ok {
		principal.Subject = sub
	}
	if role, ok := claims["role"].(string); ok {
		principal.Role = role
	}
	if principal.Subject == "" {
		return Principal{}, fmt.Errorf("token has no subject")
	}
	return principal, nil
}
