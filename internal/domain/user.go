package domain

import "time"

type User struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Phone        string    `db:"phone" json:"phone"`
	PasswordHash string    `db:"password_hash" json:"-"`
	RoleID       int64     `db:"role_id" json:"role_id"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

func (u *User) IsAdmin() bool {
	return u.RoleID == RoleAdmin
}

// Principal is the authenticated identity resolved from a verified session.
type Principal struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	RoleID int64  `json:"role_id"`
}

func (p *Principal) IsAdmin() bool {
	return p.RoleID == RoleAdmin
}

// ActiveUser is a patient row joined with its active session, used by the
// admin "who is online" listing.
type ActiveUser struct {
	ID       int64     `db:"id" json:"id"`
	Name     string    `db:"name" json:"name"`
	Phone    string    `db:"phone" json:"phone"`
	LoginAt  time.Time `db:"login_at" json:"login_at"`
	IsActive bool      `db:"is_active" json:"is_active"`
}
