package app

import "errors"

var (
	// ErrInvalidState is returned by label setters called before an image is set.
	ErrInvalidState = errors.New("no image set")

	// ErrInvalidScale is returned for scale limits that are not finite.
	ErrInvalidScale = errors.New("scale must be finite")
)
