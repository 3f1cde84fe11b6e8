package models

import "github.com/google/uuid"

// newOrderedID returns a UUIDv7. IDs generated in one process sort in creation
// order, which breaks ties between rows sharing a created_at.
func newOrderedID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// All returns every persisted model in migration order
func All() []interface{} {
	return []interface{}{
		&Department{},
		&User{},
		&Session{},
		&Complaint{},
		&Comment{},
		&ActivityLog{},
		&Notification{},
	}
}
