package twitter

import "errors"

var (
	ErrInvalidTarget    = errors.New("twitter: username or user id is required")
	ErrInvalidPageCount = errors.New("twitter: page count must be positive")
	ErrExchangeTimeout  = errors.New("twitter: network exchange not captured in time")
	ErrDecodeFailure    = errors.New("twitter: captured body could not be decoded")
	ErrUserNotFound     = errors.New("twitter: user not found")
	ErrBrowserNotReady  = errors.New("twitter: browser not initialized")
)
