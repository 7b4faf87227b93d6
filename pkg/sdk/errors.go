package yelpb

import "github.com/gana36/YELPB/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidArgument   = domain.ErrInvalidArgument
	ErrSourceUnavailable = domain.ErrSourceUnavailable
	ErrQuotaExceeded     = domain.ErrQuotaExceeded
	ErrRateLimited       = domain.ErrRateLimited
)

// SourceError carries the upstream status of a failed source call.
type SourceError = domain.SourceError
