package model

import "time"

// Repo is a repository owned by a User.
type Repo struct {
	ID        string    `json:"id"` // xid
	Name      string    `json:"name"`
	FullName  string    `json:"full_name"` // "<owner>/<name>"
	Owner     string    `json:"owner"`
	Private   bool      `json:"private"`
	CreatedAt time.Time `json:"created_at"`
}
