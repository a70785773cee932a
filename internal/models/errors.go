package models

import "errors"

var (
	// ErrStore is returned when a query or connection to the database fails.
	ErrStore = errors.New("store error")
	// ErrWrite is returned when an output file cannot be written.
	ErrWrite = errors.New("write error")
	// ErrDispatch is returned when the messaging provider rejects a message.
	ErrDispatch = errors.New("dispatch error")
	// ErrTableNotAllowed is returned for table names that were not enumerated by the store.
	ErrTableNotAllowed = errors.New("table is not allowed for export")
)
