package http

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/pinlive-server/internal/auth"
	"github.com/vovakirdan/pinlive-server/internal/core"
	"github.com/vovakirdan/pinlive-server/internal/proto"
)

const (
	// ContextKeyUserID is the context key for storing user ID.
	ContextKeyUserID = "user_id"
	// ContextKeyUsername is the context key for storing username.
	ContextKeyUsername = "username"
)

// IdentityVerifier resolves a bearer token to the user behind it. Forget
// invalidates anything it remembers about a user.
type IdentityVerifier interface {
	Verify(ctx context.Context, token string) (core.Identity, error)
	Forget(userID string)
}

// AuthMiddleware resolves the request token before the handler runs. Failed
// requests are answered with 401 and the reason reported to onReject, if set.
func AuthMiddleware(verifier IdentityVerifier, onReject func(reason string), logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := verifier.Verify(c.Request.Context(), extractToken(c))
		if err != nil {
			reason := rejectReason(err)
			logger.Debug().Err(err).Str("path", c.Request.URL.Path).Msg("authentication failed")
			if onReject != nil {
				onReject(reason)
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, proto.ErrorResponse{Error: reason})
			return
		}

		c.Set(ContextKeyUserID, identity.ID)
		c.Set(ContextKeyUsername, identity.Username)

		c.Next()
	}
}

// extractToken reads "Authorization: Bearer <token>" and falls back to the
// token query parameter, which browsers use for websocket handshakes.
func extractToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	return c.Query("token")
}

// ServiceAuthMiddleware admits requests carrying the shared service token.
func ServiceAuthMiddleware(serviceToken string, logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if serviceToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(serviceToken)) != 1 {
			logger.Debug().Str("path", c.Request.URL.Path).Msg("service authentication failed")
			c.AbortWithStatusJSON(http.StatusUnauthorized, proto.ErrorResponse{Error: "invalid service token"})
			return
		}
		c.Next()
	}
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, auth.ErrTokenMissing):
		return proto.ReasonTokenMissing
	case errors.Is(err, auth.ErrUserNotFound):
		return proto.ReasonUserNotFound
	default:
		return proto.ReasonInvalidToken
	}
}

func identityFromContext(c *gin.Context) core.Identity {
	return core.Identity{
		ID:       c.GetString(ContextKeyUserID),
		Username: c.GetString(ContextKeyUsername),
	}
}

// LoggerMiddleware creates a middleware that logs HTTP requests.
func LoggerMiddleware(logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Process request
		c.Next()

		// Log after request
		logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Msg("http request")
	}
}
