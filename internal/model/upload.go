package model

import "time"

// File is an uploaded PDF record. PDF holds the storage location.
type File struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	PDF       string    `json:"pdf"`
	Date      string    `json:"date"`
	CreatedAt time.Time `json:"createdAt"`
}
