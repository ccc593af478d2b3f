package supabase

// TokenResponse is the body returned by the password and refresh_token grants.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

// User is the authenticated account as reported by the auth service.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	Role        string `json:"role,omitempty"`
	ConfirmedAt string `json:"confirmed_at,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// SignUpResult is the outcome of a sign-up attempt. Depending on the
// project's confirmation policy the service either returns a ready session
// (auto-confirm) or just the pending user record.
type SignUpResult struct {
	// User is always populated on success.
	User User

	// Session is non-nil only when the account was auto-confirmed and the
	// user can proceed without a separate sign-in.
	Session *TokenResponse

	// ConfirmationRequired reports that the account needs email confirmation
	// before the first sign-in.
	ConfirmationRequired bool
}

type signUpResponse struct {
	// Auto-confirm projects return a full token response with the user
	// embedded; confirmation-required projects return the bare user object.
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	User         *User  `json:"user"`

	// Bare user fields, present when no session was issued.
	ID    string `json:"id"`
	Email string `json:"email"`
}
