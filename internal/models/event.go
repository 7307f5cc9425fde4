package models

import "time"

// ProcessedEvent is published after an image has been stored.
type ProcessedEvent struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	Format    Format    `json:"format"`
	Model     string    `json:"model"`
	Size      int       `json:"size"`
	Elapsed   float64   `json:"elapsed"`
	CreatedAt time.Time `json:"created_at"`
}

func NewProcessedEvent(img *ProcessedImage) ProcessedEvent {
	return ProcessedEvent{
		ID:        img.ID,
		Filename:  img.Filename,
		Format:    img.Format,
		Model:     img.Model,
		Size:      len(img.Data),
		Elapsed:   img.Elapsed,
		CreatedAt: img.CreatedAt,
	}
}
