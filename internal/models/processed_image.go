package models

import "time"

type ProcessedImage struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	Format    Format    `json:"format"`
	Model     string    `json:"model"`
	Data      []byte    `json:"-"`
	Inline    string    `json:"image,omitempty"`
	Elapsed   float64   `json:"time"`
	CreatedAt time.Time `json:"created_at"`
}

// StoredImage is what the Output Store hands back on lookup.
type StoredImage struct {
	ID       string
	Format   Format
	Filename string
	Data     []byte
}

// ImageRecord is the metadata kept per stored image.
type ImageRecord struct {
	ID        string    `json:"id"`
	Format    Format    `json:"format"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}
