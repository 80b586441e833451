package auth

import (
	"context"
	"time"

	"github.com/Vjossaab/commercify-client/pkg/logger"
	"github.com/Vjossaab/commercify-client/pkg/redis"
)

// Keyring is the slice of the key-value store the vault persists into.
type Keyring interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

// Vault keeps the session token and the serialized user profile under their
// fixed storage keys, mirroring what the backend hands out at login.
type Vault struct {
	kv       Keyring
	tokenKey string
	userKey  string
	logg     *logger.Logger
	now      func() time.Time
}

// NewVault builds a vault over the shared key-value store.
func NewVault(kv Keyring, tokenKey, userKey string, logg *logger.Logger) *Vault {
	return &Vault{kv: kv, tokenKey: tokenKey, userKey: userKey, logg: logg, now: time.Now}
}

// Save persists the token and user profile together.
func (v *Vault) Save(ctx context.Context, token, userJSON string) error {
	if err := v.kv.Set(ctx, v.tokenKey, token, 0); err != nil {
		return err
	}
	return v.kv.Set(ctx, v.userKey, userJSON, 0)
}

// Token returns the stored session token. Expired or unreadable tokens are
// dropped and reported as absent.
func (v *Vault) Token(ctx context.Context) (string, error) {
	token, err := v.kv.Get(ctx, v.tokenKey)
	if redis.IsNil(err) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	claims, parseErr := ParseSessionClaims(token)
	if parseErr != nil || claims.Expired(v.now()) {
		v.logg.Warn(ctx, "dropping unusable session token")
		if err := v.Clear(ctx); err != nil {
			v.logg.Error(ctx, "clearing session token", err)
		}
		return "", nil
	}
	return token, nil
}

// User returns the stored serialized user profile, or empty when absent.
func (v *Vault) User(ctx context.Context) (string, error) {
	user, err := v.kv.Get(ctx, v.userKey)
	if redis.IsNil(err) {
		return "", nil
	}
	return user, err
}

// Clear drops both keys.
func (v *Vault) Clear(ctx context.Context) error {
	return v.kv.Del(ctx, v.tokenKey, v.userKey)
}

// TokenSource adapts the vault to the backend client's token hook. Lookup
// failures degrade to an anonymous request.
func (v *Vault) TokenSource(ctx context.Context) func() string {
	return func() string {
		token, err := v.Token(ctx)
		if err != nil {
			return ""
		}
		return token
	}
}
