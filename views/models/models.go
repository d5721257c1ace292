package models

import "time"

// NoteView represents a note for template rendering
type NoteView struct {
	ID        string
	Title     string
	HTML      string // rendered markdown, trusted
	Folder    string
	Tags      []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NoteLink is one row of the note index page
type NoteLink struct {
	ID    string
	Title string
}
