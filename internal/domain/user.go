package domain

import "time"

// Identity is the signed-in user as seen by the client.
// The zero value means nobody is signed in.
type Identity struct {
	// Key scopes per-user local state. It is the email when the token
	// carries one and the subject otherwise.
	Key       string    `json:"key"`
	Subject   string    `json:"subject"`
	Email     string    `json:"email,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// SignedIn reports whether the identity belongs to a user
func (i Identity) SignedIn() bool {
	return i.Key != ""
}

// AuthClaims represents the JWT claims the client reads from a session token
type AuthClaims struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
	Exp   int64  `json:"exp"`
	Iat   int64  `json:"iat"`
}

// UserProfile is the signed-in user's account as the server knows it
type UserProfile struct {
	ID                string `json:"id"`
	Email             string `json:"email"`
	FirstName         string `json:"first_name"`
	LastName          string `json:"last_name"`
	ProfilePictureURL string `json:"profile_picture_url,omitempty"`
	ChannelID         string `json:"channel_id,omitempty"`
}
