package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/vovakirdan/pinlive-server/internal/core"
	"github.com/vovakirdan/pinlive-server/internal/store"
)

var (
	// ErrTokenMissing is returned when no token was presented.
	ErrTokenMissing = errors.New("token not provided")
	// ErrInvalidToken is returned for bad signatures, expired or malformed tokens.
	ErrInvalidToken = errors.New("invalid token")
	// ErrUserNotFound is returned when a valid token names a user that no longer exists.
	ErrUserNotFound = errors.New("user not found")
)

// Verifier resolves bearer tokens to user identities.
type Verifier struct {
	users     store.UserStore
	jwtConfig *JWTConfig
	cache     *cache.Cache
}

// NewVerifier creates a verifier. Resolved identities are cached for cacheTTL;
// a non-positive TTL disables caching.
func NewVerifier(users store.UserStore, jwtConfig *JWTConfig, cacheTTL time.Duration) *Verifier {
	v := &Verifier{
		users:     users,
		jwtConfig: jwtConfig,
	}
	if cacheTTL > 0 {
		v.cache = cache.New(cacheTTL, 2*cacheTTL)
	}
	return v
}

// Verify validates the token and loads the user it names.
func (v *Verifier) Verify(ctx context.Context, token string) (core.Identity, error) {
	if token == "" {
		return core.Identity{}, ErrTokenMissing
	}

	claims, err := ValidateToken(v.jwtConfig, token)
	if err != nil {
		return core.Identity{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	userID := claims.SubjectID()
	if userID == "" {
		return core.Identity{}, fmt.Errorf("%w: no user id claim", ErrInvalidToken)
	}

	if v.cache != nil {
		if cached, ok := v.cache.Get(userID); ok {
			return cached.(core.Identity), nil
		}
	}

	user, err := v.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return core.Identity{}, ErrUserNotFound
		}
		return core.Identity{}, fmt.Errorf("lookup user: %w", err)
	}

	identity := core.Identity{ID: user.ID, Username: user.Username}
	if v.cache != nil {
		v.cache.SetDefault(userID, identity)
	}
	return identity, nil
}

// Forget drops the cached identity of userID. Call it whenever the user's
// record changes or is removed.
func (v *Verifier) Forget(userID string) {
	if v.cache != nil {
		v.cache.Delete(userID)
	}
}
