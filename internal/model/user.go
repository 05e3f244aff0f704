package model

import "time"

// User represents a marketplace member. Points are earned when other members
// consume this user's items through point swaps.
type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Points       int        `json:"points"`
	IsAdmin      bool       `json:"is_admin"`
	CreatedAt    time.Time  `json:"created_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

// CanManage reports whether the user may modify a listing owned by ownerID.
func (u *User) CanManage(ownerID int64) bool {
	return u.ID == ownerID || u.IsAdmin
}
