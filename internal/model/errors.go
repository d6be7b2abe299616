package model

import "fmt"

// ValidationError reports malformed or missing caller input
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// FetchError reports that upstream content for a title could not be retrieved
type FetchError struct {
	TitleNumber int
	Date        string
	StatusCode  int // 0 for transport failures
	Err         error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch title %d (%s): %v", e.TitleNumber, e.Date, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// TitleNotFoundError reports a title number with no registered metadata
type TitleNotFoundError struct {
	TitleNumber int
}

func (e *TitleNotFoundError) Error() string {
	return fmt.Sprintf("title %d not found", e.TitleNumber)
}

// PersistenceError reports a report store read or write failure
type PersistenceError struct {
	Op  string // "save", "load", "list"
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("report store %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
