// Package pass renders the scannable part of a printable booking pass.
// Page layout and document rendering happen in an external service.
package pass

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/kirinyoku/lodge-go/internal/domain"
	"github.com/kirinyoku/lodge-go/internal/service/booking"
	"github.com/skip2/go-qrcode"
)

var ErrNotApproved = errors.New("booking is not approved")

const defaultSize = 256

// Bookings is the part of the booking service a pass needs.
type Bookings interface {
	Get(ctx context.Context, id uuid.UUID, v booking.Viewer) (*domain.Booking, error)
}

type Service struct {
	bookings Bookings
	size     int
}

func New(bookings Bookings, size int) *Service {
	if size <= 0 {
		size = defaultSize
	}
	return &Service{bookings: bookings, size: size}
}

// Render returns a PNG QR code for an approved booking the viewer may see.
//
// Returns:
//   - error: booking.ErrNotFound, booking.ErrForbidden.
//   - error: pass.ErrNotApproved if the booking is not approved.
func (s *Service) Render(ctx context.Context, bookingID uuid.UUID, v booking.Viewer) ([]byte, error) {
	const op = "service.pass.Render"

	b, err := s.bookings.Get(ctx, bookingID, v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if b.Status != domain.BookingApproved {
		return nil, fmt.Errorf("%s: %w", op, ErrNotApproved)
	}

	png, err := qrcode.Encode(Content(b), qrcode.Medium, s.size)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return png, nil
}

// Content is the text encoded in the pass.
func Content(b *domain.Booking) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "BOOKING %s\n", b.Number)
	fmt.Fprintf(&sb, "EVENT %s\n", b.EventName)
	fmt.Fprintf(&sb, "STAY %s/%s\n", b.Request.StayFrom.Format("2006-01-02"), b.Request.StayTo.Format("2006-01-02"))

	for _, a := range b.Allocations {
		name := ""
		if a.PersonIndex < len(b.Request.People) {
			name = b.Request.People[a.PersonIndex].Name
		}
		fmt.Fprintf(&sb, "%s: %s / %s / %s\n", name, a.BuildingName, a.RoomName, a.BedName)
	}

	return strings.TrimRight(sb.String(), "\n")
}
