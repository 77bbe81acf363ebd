package store

import "errors"

var (
	// ErrSoldOut is returned when an event cannot cover the requested quantity.
	ErrSoldOut = errors.New("not enough tickets available")
	// ErrStatusConflict is returned when a conditional status transition matched no row.
	ErrStatusConflict = errors.New("ticket is not in the expected status")
	// ErrCapacityBelowSold is returned when a capacity change would drop below tickets already sold.
	ErrCapacityBelowSold = errors.New("capacity is below tickets already sold")
)
