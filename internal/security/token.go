package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// StaffClaims identify a workshop employee. There are no stored accounts;
// anyone holding the shared secret can mint a token.
type StaffClaims struct {
	Name string `json:"name"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func GenerateStaffToken(secret, name, role string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("jwt secret is empty")
	}
	if role != RoleAdmin && role != RoleStaff {
		return "", fmt.Errorf("unknown role %q", role)
	}

	now := time.Now()
	claims := StaffClaims{
		Name: name,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "mk3hierros",
			Subject:   name,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign jwt: %w", err)
	}
	return signed, nil
}

func ParseStaffToken(tokenStr, secret string) (*StaffClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &StaffClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithIssuer("mk3hierros"))
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*StaffClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token")
}
