package middleware

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/averix/teamsync/internal/infra/appctx"
)

// JWTAuthMiddleware guards the query surface. The token is issued by the
// external auth service; this layer only verifies it and extracts the
// identity.
func JWTAuthMiddleware(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, ok := identityFromRequest(c, secret)
			if !ok {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing or invalid jwt"})
			}

			c.SetRequest(
				c.Request().WithContext(
					appctx.WithUserID(c.Request().Context(), userID),
				),
			)

			return next(c)
		}
	}
}

// OptionalJWTMiddleware is used on the real-time endpoint: guests are
// allowed, but an authenticated identity is attached when a valid token is
// present.
func OptionalJWTMiddleware(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if userID, ok := identityFromRequest(c, secret); ok {
				c.SetRequest(
					c.Request().WithContext(
						appctx.WithUserID(c.Request().Context(), userID),
					),
				)
			}

			return next(c)
		}
	}
}

func identityFromRequest(c echo.Context, secret string) (uuid.UUID, bool) {
	cookie, err := c.Cookie("jwt")
	if err != nil {
		return uuid.Nil, false
	}

	token, err := jwt.ParseWithClaims(cookie.Value, &jwt.RegisteredClaims{}, func(token *jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return uuid.Nil, false
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return uuid.Nil, false
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, false
	}

	return userID, true
}
