package domain

import "errors"

// ErrInvalidURL indicates a URL without an http:// or https:// scheme.
// The offending URL is never included in the message.
var ErrInvalidURL = errors.New("invalid url: only http and https are supported")

// ErrLaunch indicates the transfer agent could not be started
var ErrLaunch = errors.New("transfer agent could not be started")

// ErrTransfer indicates the transfer agent ran and reported failure
var ErrTransfer = errors.New("transfer failed")

// ErrMissingQueueFile is returned by a processor pass when there is no queue file
var ErrMissingQueueFile = errors.New("queue file not found")

// ErrNoFreeName indicates the resolver gave up looking for an unused filename
var ErrNoFreeName = errors.New("no free filename available")
