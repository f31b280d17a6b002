package registration

import "errors"

var (
	// ErrAlreadyCreated is returned by a Sink when the artifact was already
	// produced in this run by another writer
	ErrAlreadyCreated = errors.New("resource already created")

	// ErrRunFinished is returned when a round arrives after finalization
	ErrRunFinished = errors.New("registration run already finished")

	// ErrNilHost is returned when a processor is built without a host
	ErrNilHost = errors.New("host cannot be nil")
)
