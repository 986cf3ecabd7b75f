package model

// HostUser is the projection read from the host application's user table.
// Table and column names come from configuration.
type HostUser struct {
	ID    string
	Email string
}
