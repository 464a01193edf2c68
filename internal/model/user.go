package model

import "time"

// Role values stored in users.role. Authorization middleware compares
// these against the allowed set configured per route.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a row in the `users` table. PasswordHash is a bcrypt
// digest and is never serialized into API responses.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Username     – unique display name, generated at registration.
//  Email        – unique email address (stored lowercased).
//  PasswordHash – bcrypt hashed password.
//  Role         – "user" or "admin".
//  FirstName    – optional first name.
//  LastName     – optional last name.
//  SocialLinks  – optional links to external profiles.
type User struct {
	ID           uint64      `json:"id"`
	Username     string      `json:"username"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"-"`
	Role         string      `json:"role"`
	FirstName    string      `json:"firstName,omitempty"`
	LastName     string      `json:"lastName,omitempty"`
	SocialLinks  SocialLinks `json:"socialLinks"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// SocialLinks groups the optional profile URLs a user may publish.
type SocialLinks struct {
	Website   string `json:"website,omitempty"`
	Facebook  string `json:"facebook,omitempty"`
	Instagram string `json:"instagram,omitempty"`
	Youtube   string `json:"youtube,omitempty"`
	X         string `json:"x,omitempty"`
}
