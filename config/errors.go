package config

import "errors"

var (
	// ErrInvalid is returned by Validate and wraps every field failure.
	ErrInvalid = errors.New("invalid configuration")

	// ErrUnsupportedFormat is returned by Load for an unknown file extension.
	ErrUnsupportedFormat = errors.New("unsupported config format")
)
