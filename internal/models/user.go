package models

import (
	"fmt"
	"time"

	"github.com/desertthunder/encore/internal/shared"
)

// User is a connected catalog account with its OAuth token set.
type User struct {
	entity

	spotifyUserID  string
	email          string
	displayName    string
	avatarURL      string
	accessToken    string
	refreshToken   string
	tokenExpiresAt time.Time
}

// NewUser creates a user from a catalog profile and a fresh token set.
func NewUser(sequence int, profile Profile) *User {
	return &User{
		entity:        newEntity(sequence),
		spotifyUserID: profile.ID,
		email:         profile.Email,
		displayName:   profile.DisplayName,
		avatarURL:     profile.AvatarURL,
	}
}

func (u *User) SpotifyUserID() string     { return u.spotifyUserID }
func (u *User) Email() string             { return u.email }
func (u *User) DisplayName() string       { return u.displayName }
func (u *User) AvatarURL() string         { return u.avatarURL }
func (u *User) AccessToken() string       { return u.accessToken }
func (u *User) RefreshToken() string      { return u.refreshToken }
func (u *User) TokenExpiresAt() time.Time { return u.tokenExpiresAt }

func (u *User) SetSpotifyUserID(id string)     { u.spotifyUserID = id }
func (u *User) SetEmail(email string)          { u.email = email }
func (u *User) SetDisplayName(name string)     { u.displayName = name }
func (u *User) SetAvatarURL(url string)        { u.avatarURL = url }
func (u *User) SetAccessToken(token string)    { u.accessToken = token }
func (u *User) SetRefreshToken(token string)   { u.refreshToken = token }
func (u *User) SetTokenExpiresAt(t time.Time)  { u.tokenExpiresAt = t }

// SetTokens stores a token set and its absolute expiry. A refresh response
// may omit the refresh token, in which case the stored one is kept.
func (u *User) SetTokens(access, refresh string, expiresIn int) {
	u.accessToken = access
	if refresh != "" {
		u.refreshToken = refresh
	}
	u.tokenExpiresAt = time.Now().Add(time.Duration(expiresIn) * time.Second)
}

// TokenExpired reports whether the access token has passed its expiry.
func (u *User) TokenExpired() bool {
	return !u.tokenExpiresAt.After(time.Now())
}

// Validate checks that the user is associable with a catalog account.
func (u *User) Validate() error {
	if u.spotifyUserID == "" {
		return fmt.Errorf("%w: user requires a spotify user id", shared.ErrInvalidInput)
	}
	return nil
}
