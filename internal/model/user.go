package model

import "time"

type User struct {
	ID           string
	FirstName    string
	LastName     string
	EmailID      string
	Age          *int
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicUser is the only user shape that leaves the service. New fields on
// User stay private until they are added here.
type PublicUser struct {
	ID        string `json:"_id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName,omitempty"`
	EmailID   string `json:"emailId"`
	Age       *int   `json:"age,omitempty"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		EmailID:   u.EmailID,
		Age:       u.Age,
	}
}
