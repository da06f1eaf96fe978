package models

import "time"

// User is the subset of a profile the messaging core reads.
type User struct {
	ID           string    `json:"_id"`
	FullName     string    `json:"fullname"`
	Email        string    `json:"email,omitempty"`
	ProfileImage string    `json:"profileImage,omitempty"`
	Language     string    `json:"language"`
	CreatedAt    time.Time `json:"createdAt"`
}
