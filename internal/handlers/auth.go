package handlers

import (
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"
)

// AuthHandler stores the token minted by the identity provider and serves
// the login page it redirects through. Credential handling itself lives
// with the provider, not here.
type AuthHandler struct {
	store sessions.Store
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(store sessions.Store) *AuthHandler {
	return &AuthHandler{store: store}
}

// LoginPage renders the sign-in redirect page.
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	fmt.Fprint(w, `<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="UTF-8">
	<title>Sign in</title>
	<link href="/static/css/output.css" rel="stylesheet">
</head>
<body class="bg-gray-50">
	<div class="max-w-md mx-auto py-16 text-center">
		<h1 class="text-2xl font-bold mb-4">Sign in to continue</h1>
		<p class="text-gray-600 mb-6">You need an account to book tickets.</p>
		<a href="/auth/callback?token=demo" class="bg-primary-600 text-white px-6 py-3 rounded-lg font-medium">Continue</a>
	</div>
</body>
</html>`)
}

// Callback receives the identity provider's token and stores it in the
// visitor's session.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	session, err := h.store.Get(r, "session")
	if err != nil {
		http.Error(w, "Session error", http.StatusInternalServerError)
		return
	}
	session.Values["auth_token"] = token
	if err := session.Save(r, w); err != nil {
		http.Error(w, "Failed to save session", http.StatusInternalServerError)
		return
	}

	next := r.URL.Query().Get("next")
	if next == "" || next[0] != '/' {
		next = "/events"
	}
	http.Redirect(w, r, next, http.StatusSeeOther)
}

// Logout clears the stored token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session, err := h.store.Get(r, "session")
	if err != nil {
		http.Error(w, "Session error", http.StatusInternalServerError)
		return
	}
	delete(session.Values, "auth_token")
	if err := session.Save(r, w); err != nil {
		http.Error(w, "Failed to save session", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/events", http.StatusSeeOther)
}
