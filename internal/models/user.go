package models

import "time"

type User struct {
	ID        int    `gorm:"primaryKey" json:"id"`
	Username  string `gorm:"unique;not null" json:"username"`
	Email     string `gorm:"unique;not null" json:"email"`
	Password  string `gorm:"not null" json:"-"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Picture   string `json:"picture"`
	Phone     string `json:"phone,omitempty"`

	IsActive    bool `gorm:"default:true" json:"is_active"`
	IsStaff     bool `gorm:"default:false" json:"is_staff"`
	IsSuperuser bool `gorm:"default:false" json:"is_superuser"`

	Created time.Time `gorm:"autoCreateTime" json:"created"`
	Updated time.Time `gorm:"autoUpdateTime" json:"updated"`
}

// AuthorSummary is the reduced author projection embedded in posts and
// comments. Never carries credentials.
type AuthorSummary struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Picture   string `json:"picture"`
}

func (u *User) Summary() *AuthorSummary {
	if u == nil || u.ID == 0 {
		return nil
	}
	return &AuthorSummary{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Picture:   u.Picture,
	}
}

// FullName falls back to the username when both name parts are empty.
func (u *User) FullName() string {
	switch {
	case u.FirstName == "" && u.LastName == "":
		return u.Username
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

type RegisterRequest struct {
	Username  string `json:"username" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}
