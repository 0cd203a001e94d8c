// Package auth carries the access-token claims and the request locals the auth
// middleware fills in.
package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"

	"github.com/sudoneoox/Picton/internals/constants"
)

const (
	LocUserID      = "user_id"
	LocUserRole    = "userRole"
	LocIsSuperuser = "is_superuser"
	LocTokenExpiry = "token_exp"
)

var ErrNoUser = errors.New("user not found in context")

type Claims struct {
	UserID      uint   `json:"id"`
	UserName    string `json:"user_name"`
	Role        string `json:"role"`
	IsSuperuser bool   `json:"is_superuser"`
	jwt.RegisteredClaims
}

// IssueAccessToken signs an HS256 token valid for ttl from now.
func IssueAccessToken(secret string, ttl time.Duration, userID uint, userName string, role constants.Role, superuser bool, now time.Time) (string, time.Time, error) {
	if secret == "" {
		return "", time.Time{}, errors.New("missing JWT secret")
	}
	exp := now.Add(ttl)
	claims := Claims{
		UserID:      userID,
		UserName:    userName,
		Role:        string(role),
		IsSuperuser: superuser,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	return signed, exp, err
}

// ParseAccessToken verifies signature and expiry.
func ParseAccessToken(secret, raw string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !tok.Valid || claims.UserID == 0 {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

func GetUserID(c *fiber.Ctx) (uint, error) {
	id, ok := c.Locals(LocUserID).(uint)
	if !ok || id == 0 {
		return 0, ErrNoUser
	}
	return id, nil
}

func GetRole(c *fiber.Ctx) constants.Role {
	r, _ := c.Locals(LocUserRole).(string)
	return constants.Role(r)
}

func IsSuperuser(c *fiber.Ctx) bool {
	v, _ := c.Locals(LocIsSuperuser).(bool)
	return v
}

func IsAdmin(c *fiber.Ctx) bool {
	return IsSuperuser(c) || GetRole(c) == constants.RoleAdmin
}
