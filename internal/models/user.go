package models

import "time"

// UserRole controls what a user may do
type UserRole string

const (
	RolePublic UserRole = "public"
	RoleStaff  UserRole = "staff"
	RoleAdmin  UserRole = "admin"
)

// Valid reports whether r is a known role
func (r UserRole) Valid() bool {
	return r == RolePublic || r == RoleStaff || r == RoleAdmin
}

// User is an operator account. Password holds a bcrypt hash and is blanked
// by Sanitize before any value leaves a service.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"not null" json:"password"`
	Name      string    `gorm:"not null" json:"name"`
	Role      UserRole  `gorm:"not null;default:'staff'" json:"role"`
	IsActive  bool      `gorm:"not null;default:true" json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}

// Sanitize clears the password hash.
func (u *User) Sanitize() *User {
	if u != nil {
		u.Password = ""
	}
	return u
}
