package models

import "time"

// User is the account record persisted by the users repository.
//
// PasswordHash and RefreshToken never leave the service layer; Public()
// strips them before a record is handed to a caller. RefreshToken holds the
// single live refresh token for the account, or nil when the account has no
// active refresh chain.
type User struct {
	ID           string
	Username     string
	Email        string
	FullName     string
	PasswordHash string
	AvatarKey    string
	AvatarURL    string
	CoverKey     string
	CoverURL     string
	RefreshToken *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicUser is the account projection safe to return to clients.
type PublicUser struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullname"`
	AvatarURL string    `json:"avatar"`
	CoverURL  string    `json:"coverImage"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Public returns the projection of the account with the password hash and
// refresh token stripped.
func (u *User) Public() *PublicUser {
	return &PublicUser{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FullName:  u.FullName,
		AvatarURL: u.AvatarURL,
		CoverURL:  u.CoverURL,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
