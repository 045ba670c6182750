package bot

import "time"

// Bot is an automated bettor backed by a user account.
type Bot struct {
	ID             string
	UserID         string
	Name           string
	Strategy       string
	Config         []byte
	Active         bool
	LastActivityAt *time.Time
}
