package models

import "time"

// AdminAccount is one administrator as reported by the backend.
type AdminAccount struct {
	ID        int64
	Username  string
	CreatedAt *time.Time
	Disabled  bool
}

// PendingEdit is an update being prepared for TargetID. A nil Password or
// Disabled leaves that attribute unchanged.
type PendingEdit struct {
	TargetID int64
	Password []byte
	Disabled *bool
}

// PendingDelete is a delete being prepared for TargetID. TypedUsername must
// equal the target's username exactly before the request is sent.
type PendingDelete struct {
	TargetID      int64
	TypedUsername string
}
