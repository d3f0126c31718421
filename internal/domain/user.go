package domain

import "time"

// User mirrors the Telegram account that opened the Mini-App. TelegramID
// doubles as the chat id notifications are sent to.
type User struct {
	TelegramID int64     `json:"telegram_id"`
	Username   string    `json:"username,omitempty"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name,omitempty"`
	PhotoURL   string    `json:"photo_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
