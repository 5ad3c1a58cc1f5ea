package tui

import "time"

const (
	frameInterval = 250 * time.Millisecond
	noticeTTL     = 3 * time.Second
)

const (
	explorerTitle    = "Paper Explorer"
	titlesTitle      = "Titles"
	tagsTitle        = "Tags"
	contentTitle     = "Content"
	titleBlockTitle  = "Title"
	authorsTitle     = "Authors"
	descriptionTitle = "Description"
	dialogTitle      = "Delete entry? (y to confirm)"
)

const (
	defaultWidth  = 120
	defaultHeight = 32
	// fallbackCapacity is used when the terminal size is unknown or too small.
	fallbackCapacity = 20
	statusHeight     = 1
)

type tickMsg time.Time

type notice struct {
	Text    string
	IsError bool
	At      time.Time
}

func (n notice) expired(now time.Time) bool {
	return n.Text == "" || now.Sub(n.At) >= noticeTTL
}
