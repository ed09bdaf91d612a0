package service

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrDeployBlocked     = errors.New("deployment blocked by high severity findings")
	ErrDeployTimeout     = errors.New("deployment timed out")
	ErrBusy              = errors.New("operation already in progress")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrInvalidAction     = errors.New("invalid host action")
)
