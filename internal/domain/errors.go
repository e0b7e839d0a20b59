package domain

import "errors"

var (
	// ErrImageRequired is returned when the container environment carries no
	// image reference under the configured variable.
	ErrImageRequired = errors.New("container image must not be empty")
	// ErrInvalidImage is returned for references that fail the image grammar.
	ErrInvalidImage = errors.New("not a valid image reference")
	// ErrDaemonURLRequired is a fatal configuration error: launches are
	// never attempted without a daemon endpoint.
	ErrDaemonURLRequired = errors.New("daemon url must be configured")
	// ErrAuthModeUnsupported is a fatal configuration error: the privilege
	// separation model of this launcher is the access control, so only the
	// simple authentication mode is supported.
	ErrAuthModeUnsupported = errors.New("launcher only works with simple authentication mode")
	// ErrUnknownStrategy is returned for an unrecognized launch strategy.
	ErrUnknownStrategy = errors.New("unknown launch strategy")
)
