package models

// User is the authenticated identity resolved from the marketplace API.
// This app consumes identity; it never manages credentials.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}
