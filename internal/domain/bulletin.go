package domain

import "time"

// Bulletin is an administrator notice shown to every user.
type Bulletin struct {
	ID    BulletinID
	Title string
	Body  string

	CreatedAt time.Time
}
