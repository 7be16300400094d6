package storage

// ErrNotFound is returned when a document doesn't exist in the store.
type ErrNotFound struct {
	ID string
}

func (e ErrNotFound) Error() string {
	if e.ID == "" {
		return "document not found"
	}

	return "document not found: " + e.ID
}
