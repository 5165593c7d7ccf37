package main

import "errors"

// Failure taxonomy of the store. Every mutation either fully applies or
// fails with one of these before any field changes; handlers map them to
// HTTP status codes.
var (
	// ErrDuplicateKey signals a registration conflict on phone or CNIC.
	ErrDuplicateKey = errors.New("already registered")
	// ErrInvalidCredentials signals a login mismatch.
	ErrInvalidCredentials = errors.New("invalid phone or password")
	// ErrNotFound signals an unknown user, loan or document id.
	ErrNotFound = errors.New("not found")
)
