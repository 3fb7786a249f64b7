package middleware

// identity.go defines helper functions shared across middleware files.
// currentUserID pulls the identifier stored by JWTAuth so the rate
// limiter can key buckets per user; anonymous requests share a bucket.

import (
	"fmt"

	"github.com/labstack/echo/v4"
)

// currentUserID extracts a user identifier from the Echo context.  It
// returns "anon" when no user is authenticated.
func currentUserID(c echo.Context) string {
	switch v := c.Get("user_id").(type) {
	case string:
		if v != "" {
			return v
		}
	case float64:
		return fmt.Sprintf("%.0f", v)
	case uint64:
		return fmt.Sprintf("%d", v)
	}
	return "anon"
}
