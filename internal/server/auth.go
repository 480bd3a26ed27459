// ============================================================================
// Diktat - Sprachtranskription
// ============================================================================
//
// Package:     server
// Description: JWT bearer authentication
// Created:     2026-09-24
// License:     MIT
// ============================================================================

package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// Claims are the claims of an API token
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Authenticator issues and validates HS256 bearer tokens
type Authenticator struct {
	secret []byte
}

// NewAuthenticator returns nil for an empty secret, which disables auth
func NewAuthenticator(secret string) *Authenticator {
	if secret == "" {
		return nil
	}
	return &Authenticator{secret: []byte(secret)}
}

// IssueToken creates a token for subject valid for ttl
func (a *Authenticator) IssueToken(subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		Role: "client",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// Validate parses a token and returns its claims
func (a *Authenticator) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, jwt.ErrTokenInvalidClaims
}

var errMissingToken = errors.New("missing bearer token")

// Middleware rejects requests without a valid token. Browsers cannot set
// headers on a WebSocket upgrade, so the token may also come as ?token=.
func (a *Authenticator) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString := c.QueryParam("token")
			if h := c.Request().Header.Get(echo.HeaderAuthorization); h != "" {
				tokenString = strings.TrimPrefix(h, "Bearer ")
			}
			if tokenString == "" {
				return c.JSON(http.StatusUnauthorized, ErrorResponse{
					Error:   "unauthorized",
					Message: errMissingToken.Error(),
				})
			}

			claims, err := a.Validate(tokenString)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, ErrorResponse{
					Error:   "unauthorized",
					Message: "Invalid token",
				})
			}
			c.Set("claims", claims)
			return next(c)
		}
	}
}
