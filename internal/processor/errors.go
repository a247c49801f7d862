package processor

import "errors"

var (
	// ErrNilDocumentSource is returned when a processor is constructed
	// without a document source
	ErrNilDocumentSource = errors.New("document source is required")
	// ErrNilDetector is returned when a processor is constructed without a
	// detector
	ErrNilDetector = errors.New("detector is required")
	// ErrNilRemediator is returned when a processor is constructed without
	// a remediator
	ErrNilRemediator = errors.New("remediator is required")
	// ErrPipelinePanic wraps a recovered panic from the pipeline so the
	// worker process stays alive and retry accounting stays accurate
	ErrPipelinePanic = errors.New("pipeline panic")
)
