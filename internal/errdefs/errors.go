package errdefs

import "errors"

var (
	ErrMissingColumn     = errors.New("missing required column")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrEmptyFile         = errors.New("file contains no rows")
	ErrNoDataset         = errors.New("no dataset loaded")
	ValidationErr        = errors.New("validation error")
)
