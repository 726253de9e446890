package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role represents user roles in the system
type Role string

const (
	RoleEmployee   Role = "employee"
	RoleTechnician Role = "technician"
	RoleManager    Role = "manager"
)

// User represents a user in the system
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	Role         Role               `bson:"role" json:"role"`
	TeamID       string             `bson:"team_id,omitempty" json:"teamId,omitempty"`
	Department   string             `bson:"department,omitempty" json:"department,omitempty"`
	Phone        string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Avatar       string             `bson:"avatar,omitempty" json:"avatar,omitempty"`
	IsActive     bool               `bson:"is_active" json:"isActive"`
	LastLogin    *time.Time         `bson:"last_login,omitempty" json:"lastLogin,omitempty"`
	CreatedAt    time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updatedAt"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest represents a user registration request
type RegisterRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Role       Role   `json:"role"`
	TeamID     string `json:"teamId"`
	Department string `json:"department"`
	Phone      string `json:"phone"`
}

// LoginResponse represents a successful login response
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Claims represents the caller identity resolved from a bearer token.
type Claims struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
	TeamID string `json:"teamId,omitempty"`
	Exp    int64  `json:"exp"`
}

// UserRef is the denormalized user sub-object attached to request listings.
type UserRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role,omitempty"`
}

// Ref returns the denormalized view of a user.
func (u *User) Ref() *UserRef {
	return &UserRef{ID: u.ID.Hex(), Name: u.Name, Email: u.Email, Role: u.Role}
}

// IsValidRole checks if a role is valid
func IsValidRole(role Role) bool {
	switch role {
	case RoleEmployee, RoleTechnician, RoleManager:
		return true
	default:
		return false
	}
}
