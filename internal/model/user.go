package model

import "time"

// Placeholder passwords are stored for identities created through an
// external provider.  They are not valid bcrypt hashes, so password
// login against such an account always fails verification.
const (
	OAuthPlaceholder    = "oauth_placeholder"
	TelegramPlaceholder = "telegram_placeholder"
)

// User represents an application user record as stored in the `users`
// table.  The username uniquely identifies a user regardless of which
// login method created the row: the password flow takes it from user
// input, OAuth flows derive it from the provider profile (email or
// handle) and Telegram logins fall back to `telegram_<id>`.
//
// Fields:
//  ID        – primary key identifier of the user.
//  Username  – unique username, case-sensitive as stored.
//  Password  – bcrypt hash, or a non-authenticatable placeholder for
//              identities created by an external provider.
//  CreatedAt – timestamp of creation.
//  UpdatedAt – timestamp of last update.
type User struct {
	ID        uint64    // users.id
	Username  string    // users.username
	Password  string    // users.password
	CreatedAt time.Time // users.created_at
	UpdatedAt time.Time // users.updated_at
}
