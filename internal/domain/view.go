package domain

import "time"

type ProfileView struct {
	ID        int64     `json:"id" db:"id"`
	ViewerID  int64     `json:"viewer_id" db:"viewer_id"`
	ViewedID  int64     `json:"viewed_id" db:"viewed_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// AdminMessage is the audit record of a broadcast.
type AdminMessage struct {
	ID         int64     `json:"id" db:"id"`
	AdminID    int64     `json:"admin_identity" db:"admin_identity"`
	Text       string    `json:"text" db:"text"`
	Recipients int       `json:"recipients" db:"recipients"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
