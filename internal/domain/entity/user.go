package entity

import "strings"

// User is the host application's identity as seen by the portal.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// NormalizedEmail returns the email used for provider lookups and comparisons.
func (u *User) NormalizedEmail() string {
	return NormalizeEmail(u.Email)
}

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
