package models

// OperationResult is the display slot of one asynchronous action. Exactly one
// of the in-flight Status, a terminal Error or terminal Data is authoritative;
// a terminal success also carries a Status line.
type OperationResult[T any] struct {
	Status  string
	Error   string
	Data    T
	HasData bool
}

// InFlight reports whether an operation has started but not finished.
func (r OperationResult[T]) InFlight() bool {
	return r.Status != "" && r.Error == "" && !r.HasData
}
