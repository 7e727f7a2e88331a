package account

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Account is the stored user record. PasswordHash is persisted in the store
// but must never leave the API; handlers respond with Profile instead.
type Account struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone,omitempty"`
	Rating       float64   `json:"rating"`
	Verified     bool      `json:"verified"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email,omitempty"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Rating    float64   `json:"rating"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Profile returns the owner-facing view of the account.
func (a *Account) Profile() Profile {
	return Profile{
		ID:        a.ID,
		Email:     a.Email,
		Name:      a.Name,
		Phone:     a.Phone,
		Rating:    a.Rating,
		Verified:  a.Verified,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// PublicProfile strips fields other users should not see.
func (a *Account) PublicProfile() Profile {
	return Profile{
		ID:        a.ID,
		Name:      a.Name,
		Rating:    a.Rating,
		Verified:  a.Verified,
		CreatedAt: a.CreatedAt,
	}
}

// Session is the server-side record a token must resolve to. Deleting it
// revokes every copy of the token immediately.
type Session struct {
	ID        string    `json:"id"`
	AccountID string    `json:"account_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
