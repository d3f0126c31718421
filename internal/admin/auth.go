package admin

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrBadPIN = errors.New("wrong admin pin")

const sessionTTL = 12 * time.Hour

// AdminLookup answers whether a Telegram username is on the admin list.
type AdminLookup interface {
	IsAdminUsername(ctx context.Context, username string) (bool, error)
}

// Auth gates the admin panel. A session is opened either with the shared
// PIN or automatically for usernames in the admins table, and lives in
// Redis as an opaque token.
type Auth struct {
	client *redis.Client
	lookup AdminLookup
	pin    string
}

func NewAuth(client *redis.Client, lookup AdminLookup, pin string) *Auth {
	return &Auth{
		client: client,
		lookup: lookup,
		pin:    pin,
	}
}

// LoginWithPIN compares in constant time and opens a session on match.
func (a *Auth) LoginWithPIN(ctx context.Context, pin string) (string, error) {
	if a.pin == "" {
		return "", ErrBadPIN
	}
	if subtle.ConstantTimeCompare([]byte(a.pin), []byte(pin)) != 1 {
		return "", ErrBadPIN
	}
	return a.openSession(ctx)
}

// LoginByUsername opens a session without a PIN for registered admins.
func (a *Auth) LoginByUsername(ctx context.Context, username string) (string, bool, error) {
	isAdmin, err := a.lookup.IsAdminUsername(ctx, username)
	if err != nil {
		return "", false, err
	}
	if !isAdmin {
		return "", false, nil
	}

	token, err := a.openSession(ctx)
	if err != nil {
		return "", false, err
	}
	return token, true, nil
}

// CheckSession reports whether the token belongs to a live session.
func (a *Auth) CheckSession(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}

	err := a.client.Get(ctx, sessionKey(token)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get failed: %w", err)
	}
	return true, nil
}

func (a *Auth) Logout(ctx context.Context, token string) error {
	if err := a.client.Del(ctx, sessionKey(token)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (a *Auth) openSession(ctx context.Context) (string, error) {
	token := uuid.NewString()
	if err := a.client.Set(ctx, sessionKey(token), "1", sessionTTL).Err(); err != nil {
		return "", fmt.Errorf("redis set failed: %w", err)
	}
	return token, nil
}

func sessionKey(token string) string {
	return fmt.Sprintf("admsess:%s", token)
}
