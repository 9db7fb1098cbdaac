package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	"github.com/temirbekov/assistant-backend/internal/api/respond"
)

// UserIDKey is the context key the auth middleware stores the resolved
// user ID under.
const UserIDKey = "user_id"

type tokenParser interface {
	ParseToken(token string) (uuid.UUID, error)
}

// Auth validates the bearer token from the Authorization header and
// attaches the resolved user ID to the request context.
func Auth(tokens tokenParser) ginext.HandlerFunc {
	return func(c *ginext.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			respond.Fail(c.Writer, http.StatusUnauthorized, fmt.Errorf("missing authorization header"))
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			respond.Fail(c.Writer, http.StatusUnauthorized, fmt.Errorf("invalid authorization header"))
			c.Abort()
			return
		}

		id, err := tokens.ParseToken(parts[1])
		if err != nil {
			zlog.Logger.Warn().Err(err).Msg("failed to parse access token")
			respond.Fail(c.Writer, http.StatusUnauthorized, fmt.Errorf("invalid or expired token"))
			c.Abort()
			return
		}

		c.Set(UserIDKey, id.String())
		c.Next()
	}
}

// OwnerID extracts the authenticated user's ID from the request context.
func OwnerID(c *ginext.Context) (uuid.UUID, bool) {
	value, exists := c.Get(UserIDKey)
	if !exists {
		return uuid.Nil, false
	}

	str, ok := value.(string)
	if !ok {
		return uuid.Nil, false
	}

	id, err := uuid.Parse(str)
	if err != nil {
		return uuid.Nil, false
	}

	return id, true
}
