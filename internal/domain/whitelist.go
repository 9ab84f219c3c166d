package domain

import "time"

type WhitelistEntry struct {
	Email     string    `json:"email" db:"email"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
