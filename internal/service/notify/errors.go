package notify

import "errors"

var (
	// ErrDeliveryFailed is returned to direct callers of Notify only.
	// Domain operations go through NotifyBestEffort and never see it.
	ErrDeliveryFailed   = errors.New("notification delivery failed")
	ErrEmptyMessage     = errors.New("message is empty")
	ErrInvalidPlatform  = errors.New("unsupported push platform")
	ErrEndpointNotFound = errors.New("push endpoint not found")
)
