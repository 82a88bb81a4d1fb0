package domain

import "errors"

// ErrEmptyTitle is returned when a title is empty after trimming.
var ErrEmptyTitle = errors.New("title is empty")

// ErrTaskNotFound is returned when no task matches the given ID.
var ErrTaskNotFound = errors.New("task not found")

// ErrKeyNotFound is returned when a key cannot be found in a key-value store.
var ErrKeyNotFound = errors.New("key not found")

// ErrMalformedStore is returned when persisted data cannot be decoded into tasks.
var ErrMalformedStore = errors.New("malformed store payload")

// ErrUnknownEvent is returned when the reducer receives an event type it does not handle.
var ErrUnknownEvent = errors.New("unknown event")
