package booking

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrNotFound               = errors.New("booking not found")
	ErrEventNotFound          = errors.New("event not found")
	ErrForbidden              = errors.New("booking belongs to another user")
	ErrInvalidRequest         = errors.New("invalid stay request")
	ErrInvalidDecision        = errors.New("invalid decision")
	ErrInvalidAllocation      = errors.New("invalid allocation")
	ErrBedConflict            = errors.New("bed already occupied")
	ErrDuplicateBookingNumber = errors.New("booking number already taken")
	ErrConflict               = errors.New("booking was modified concurrently")
)

// InvalidAllocationError describes why an allocation set was rejected.
type InvalidAllocationError struct {
	Want   int    `json:"want"`
	Got    int    `json:"got"`
	Reason string `json:"reason,omitempty"`
}

func (e InvalidAllocationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid allocation: %s", e.Reason)
	}
	return fmt.Sprintf("invalid allocation: want %d entries, got %d", e.Want, e.Got)
}

func (e InvalidAllocationError) Unwrap() error { return ErrInvalidAllocation }

// BedConflictError names the bed and the person already holding it for an
// overlapping stay.
type BedConflictError struct {
	BedID         uuid.UUID `json:"bed_id"`
	BedName       string    `json:"bed_name,omitempty"`
	OccupantName  string    `json:"occupant_name,omitempty"`
	BookingNumber string    `json:"booking_number,omitempty"`
}

func (e BedConflictError) Error() string {
	bed := e.BedName
	if bed == "" {
		bed = e.BedID.String()
	}
	if e.OccupantName == "" {
		return fmt.Sprintf("bed %s is already occupied", bed)
	}
	return fmt.Sprintf("bed %s is already occupied by %s (booking %s)", bed, e.OccupantName, e.BookingNumber)
}

func (e BedConflictError) Unwrap() error { return ErrBedConflict }
