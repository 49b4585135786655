package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/pinlive-server/internal/proto"
	"github.com/vovakirdan/pinlive-server/internal/store"
)

// UserHandlers keeps the user projection in sync with the account service.
type UserHandlers struct {
	users    store.UserStore
	verifier IdentityVerifier
	log      *zerolog.Logger
}

// NewUserHandlers creates user sync handlers.
func NewUserHandlers(users store.UserStore, verifier IdentityVerifier, logger *zerolog.Logger) *UserHandlers {
	return &UserHandlers{users: users, verifier: verifier, log: logger}
}

// UpsertUser handles PUT /api/users/:id.
func (h *UserHandlers) UpsertUser(c *gin.Context) {
	id := c.Param("id")
	var req proto.UpsertUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, proto.ErrorResponse{Error: "username is required"})
		return
	}

	user, err := h.users.UpsertUser(c.Request.Context(), id, req.Username)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", id).Msg("upsert user")
		c.JSON(http.StatusInternalServerError, proto.ErrorResponse{Error: "failed to store user"})
		return
	}
	h.verifier.Forget(id)

	h.log.Debug().Str("user_id", id).Str("username", user.Username).Msg("user upserted")
	c.JSON(http.StatusOK, proto.UserResponse{ID: user.ID, Username: user.Username})
}

// DeleteUser handles DELETE /api/users/:id. Live connections of the user
// stay open; new handshakes are refused.
func (h *UserHandlers) DeleteUser(c *gin.Context) {
	id := c.Param("id")
	if err := h.users.DeleteUser(c.Request.Context(), id); err != nil {
		h.log.Error().Err(err).Str("user_id", id).Msg("delete user")
		c.JSON(http.StatusInternalServerError, proto.ErrorResponse{Error: "failed to delete user"})
		return
	}
	h.verifier.Forget(id)

	h.log.Debug().Str("user_id", id).Msg("user deleted")
	c.Status(http.StatusNoContent)
}
