package announce

import "errors"

var (
	ErrBookNotFound     = errors.New("no book found for this ISBN")
	ErrInvalidISBN      = errors.New("ISBN must contain exactly 10 or 13 digits")
	ErrNoCategory       = errors.New("a category must be selected")
	ErrNonPositivePrice = errors.New("final price must be greater than zero")
	ErrTooManyPhotos    = errors.New("at most 4 photos can be attached")
	ErrNoIdentity       = errors.New("book identity is missing")
	ErrWrongStep        = errors.New("action not allowed at this step")
	ErrUnknownCheck     = errors.New("unknown condition check")
	ErrNoPhotos         = errors.New("no photo to analyze")
	ErrInvalidImage     = errors.New("file is not a supported image")
)
