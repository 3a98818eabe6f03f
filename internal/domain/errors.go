package domain

import "errors"

var (
	// ErrDegenerateGrid is returned when a coordinate axis is empty or spans no extent.
	ErrDegenerateGrid = errors.New("degenerate grid")

	// ErrShapeMismatch is returned when two arrays that must be aligned cell by cell differ in shape.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrBulletinDate is returned for bulletin dates that are not 8 digits (YYYYMMDD).
	ErrBulletinDate = errors.New("invalid bulletin date")

	// ErrTimestamp is returned for timestamps that cannot be split into date and hour.
	ErrTimestamp = errors.New("invalid timestamp")
)
