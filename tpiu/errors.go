package tpiu

import "fmt"

// Op names the external collaborator that failed.
type Op string

const (
	OpSource Op = "source"
	OpSink   Op = "sink"
)

// IngestError reports a failure of the byte source or the packet sink. The
// run stops at the first such failure.
type IngestError struct {
	Op     Op
	Offset uint64 // stream offset being processed when the failure occurred
	Err    error
}

func (e *IngestError) Error() string {
	return fmt.Sprintf("tpiu: %s failed at offset %d: %v", e.Op, e.Offset, e.Err)
}

func (e *IngestError) Unwrap() error {
	return e.Err
}
