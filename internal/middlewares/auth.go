package middlewares

import (
	"crypto/subtle"
	"fmt"

	"github.com/labstack/echo/v4"

	"github.com/onurcolak/digest-scheduler/pkg/response"
)

const (
	APIKeyHeader = "x-digest-auth-key"
)

// secureCompare compares two strings in a way that is safer against timing attacks.
func secureCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// APIKeyAuth accepts a request carrying any of the configured keys. Empty
// keys are ignored; with none left the group is treated as misconfigured.
func APIKeyAuth(apiKeys ...string) echo.MiddlewareFunc {
	var keys []string
	for _, k := range apiKeys {
		if k != "" {
			keys = append(keys, k)
		}
	}

	if len(keys) == 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				return response.InternalServerError(
					c,
					fmt.Errorf("API key is not configured for this endpoint group"),
				)
			}
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := c.Request().Header.Get(APIKeyHeader)
			if token == "" {
				return response.Unauthorized(c)
			}

			matched := false
			for _, k := range keys {
				if secureCompare(token, k) {
					matched = true
				}
			}
			if !matched {
				return response.Unauthorized(c)
			}

			return next(c)
		}
	}
}
