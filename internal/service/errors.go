package service

import "errors"

var (
	ErrInvalidTargets     = errors.New("invalid targets envelope")
	ErrMissingTargetMeta  = errors.New("missing target metadata")
	ErrInvalidPath        = errors.New("invalid config path")
	ErrMissingTargetFile  = errors.New("missing target file")
	ErrApplyTimeout       = errors.New("config was not acknowledged in time")
	ErrHandlerPanic       = errors.New("handler panicked")
	ErrUnknownHandlerKind = errors.New("unknown handler kind")

	ErrVersionIsNotSpecified = errors.New("build version is not specified")
)
