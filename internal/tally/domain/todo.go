package domain

import "time"

// Todo is a single item on the shared list. CreatedBy is the id of the user
// who added it and is informational only.
type Todo struct {
	ID         int64
	Name       string
	IsComplete bool
	CreatedBy  string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
