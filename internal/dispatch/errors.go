package dispatch

import "errors"

var (
	// ErrNilHandler is returned when a dispatcher is constructed without a
	// handler
	ErrNilHandler = errors.New("handler is required")
	// ErrMissingPageID is returned when an event carries no page ID
	ErrMissingPageID = errors.New("page id is required")
	// ErrDuplicateJob is returned when an event repeats a recently queued
	// {page, author, delivery} triple
	ErrDuplicateJob = errors.New("duplicate job within dedup window")
	// ErrQueueFull is returned when the job buffer is at capacity
	ErrQueueFull = errors.New("job queue is full")
)
