// Package telegram validates Mini-App initData server-side. The client's
// copy of the user object is display-only; anything trusted goes through
// Validate first.
package telegram

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Shomirsaidov/chifir-food-ordering/internal/domain"
)

var (
	ErrMissingHash = errors.New("init data has no hash")
	ErrInvalidHash = errors.New("init data hash mismatch")
	ErrExpired     = errors.New("init data is too old")
	ErrNoUser      = errors.New("init data has no user")
)

type Validator struct {
	secret []byte
	maxAge time.Duration
}

// NewValidator derives the signing secret the way Telegram documents it:
// HMAC-SHA256 of the bot token keyed with "WebAppData". A zero maxAge
// disables the age check.
func NewValidator(botToken string, maxAge time.Duration) *Validator {
	mac := hmac.New(sha256.New, []byte("WebAppData"))
	mac.Write([]byte(botToken))
	return &Validator{
		secret: mac.Sum(nil),
		maxAge: maxAge,
	}
}

// Validate checks the initData signature and returns the embedded user.
func (v *Validator) Validate(initData string) (*domain.User, error) {
	values, err := url.ParseQuery(initData)
	if err != nil {
		return nil, fmt.Errorf("parse init data: %w", err)
	}

	gotHash := values.Get("hash")
	if gotHash == "" {
		return nil, ErrMissingHash
	}
	values.Del("hash")

	pairs := make([]string, 0, len(values))
	for key := range values {
		pairs = append(pairs, key+"="+values.Get(key))
	}
	sort.Strings(pairs)

	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(strings.Join(pairs, "\n")))
	wantHash := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(wantHash), []byte(gotHash)) {
		return nil, ErrInvalidHash
	}

	if v.maxAge > 0 {
		authDate, err := strconv.ParseInt(values.Get("auth_date"), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse auth_date: %w", err)
		}
		if time.Since(time.Unix(authDate, 0)) > v.maxAge {
			return nil, ErrExpired
		}
	}

	rawUser := values.Get("user")
	if rawUser == "" {
		return nil, ErrNoUser
	}

	var payload struct {
		ID        int64  `json:"id"`
		Username  string `json:"username"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		PhotoURL  string `json:"photo_url"`
	}
	if err := json.Unmarshal([]byte(rawUser), &payload); err != nil {
		return nil, fmt.Errorf("parse user: %w", err)
	}

	return &domain.User{
		TelegramID: payload.ID,
		Username:   payload.Username,
		FirstName:  payload.FirstName,
		LastName:   payload.LastName,
		PhotoURL:   payload.PhotoURL,
	}, nil
}
