package domain

import "time"

// FrameRecord describes one rendered frame.
type FrameRecord struct {
	RunID        string    `json:"run_id"`
	Product      string    `json:"product"`
	BulletinDate string    `json:"bulletin_date"`
	ValidTime    time.Time `json:"valid_time"`
	Name         string    `json:"name"`
	Path         string    `json:"-"`
	Input        string    `json:"input"`
	CreatedAt    time.Time `json:"created_at"`
}
