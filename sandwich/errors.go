package sandwich

import "errors"

var (
	// ErrInvalidInput is returned for a wallet that is not a valid account address.
	ErrInvalidInput = errors.New("invalid wallet address")
	// ErrUpstreamUnavailable is returned when the wallet's own history or another required
	// call cannot be obtained. No partial report is produced.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)
