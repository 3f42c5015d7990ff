package models

import "strings"

// User is the account of a service provider. Password is only ever sent
// to the API and is never read back or cached.
type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Password     string `json:"password,omitempty"`
	PayPalHandle string `json:"paypal_handle,omitempty"`
}

// ProfileUpdate carries the partial fields accepted by the profile endpoint.
type ProfileUpdate struct {
	PayPalHandle *string `json:"paypal_handle,omitempty"`
	Password     string  `json:"password,omitempty"`
}

// NormalizeEmail trims and lowercases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
