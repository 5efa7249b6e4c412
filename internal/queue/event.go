// Package queue defines message payloads exchanged over the message broker.
package queue

// UserRegisteredEvent is published the first time an identity resolves
// to a newly created user row, whatever the login method. Downstream
// consumers can log or notify without querying the primary database.
type UserRegisteredEvent struct {
	UserID       uint64 `json:"user_id"`
	Username     string `json:"username"`
	Method       string `json:"method"` // password | google | github | facebook | telegram
	RegisteredAt string `json:"registered_at"`
}
