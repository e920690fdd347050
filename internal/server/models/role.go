package models

// Role is a named authority that can be granted to users.
type Role struct {
	ID   string
	Name string
}
