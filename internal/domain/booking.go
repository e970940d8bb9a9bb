package domain

import (
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNoPeople        = errors.New("booking must list at least one person")
	ErrInvalidInterval = errors.New("stay_from must be before stay_to")
	ErrPersonName      = errors.New("every person needs a name")
)

// Validate checks the request payload itself; ownership and status rules
// live in the booking service.
func (r StayRequest) Validate() error {
	if len(r.People) == 0 {
		return ErrNoPeople
	}
	if !r.StayFrom.Before(r.StayTo) {
		return ErrInvalidInterval
	}
	for _, p := range r.People {
		if strings.TrimSpace(p.Name) == "" {
			return ErrPersonName
		}
	}
	return nil
}

// Interval is a half-open [From, To) time range.
type Interval struct {
	From time.Time
	To   time.Time
}

func (i Interval) Overlaps(o Interval) bool {
	return i.From.Before(o.To) && o.From.Before(i.To)
}

// Day returns the interval covering the calendar day of t in t's location.
func Day(t time.Time) Interval {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return Interval{From: start, To: start.AddDate(0, 0, 1)}
}

// AllocationsConsistent reports whether the allocation list matches the
// status: empty unless approved, one entry per person when approved.
func (b *Booking) AllocationsConsistent() bool {
	if b.Status != BookingApproved {
		return len(b.Allocations) == 0
	}
	return len(b.Allocations) == len(b.Request.People)
}

// Occupancies builds one ledger record per allocation, copying the stay
// interval and contact data from the booking.
func (b *Booking) Occupancies(newID func() uuid.UUID, now time.Time) []Occupancy {
	out := make([]Occupancy, 0, len(b.Allocations))
	for _, a := range b.Allocations {
		p := b.Request.People[a.PersonIndex]
		out = append(out, Occupancy{
			ID:            newID(),
			BookingID:     b.ID,
			BookingNumber: b.Number,
			EventID:       b.EventID,
			BedID:         a.BedID,
			RoomID:        a.RoomID,
			BuildingID:    a.BuildingID,
			PersonIndex:   a.PersonIndex,
			Name:          p.Name,
			Age:           p.Age,
			Gender:        p.Gender,
			StayFrom:      b.Request.StayFrom,
			StayTo:        b.Request.StayTo,
			Phone:         b.Request.Contact.Phone,
			City:          b.Request.Address.City,
			CreatedAt:     now,
		})
	}
	return out
}

// crockford base32 without I, L, O, U.
const numberAlphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

const numberSuffixLen = 5

// NewBookingNumber composes a date code with a short random suffix, e.g.
// 240501-7KQ3D. Uniqueness is enforced by the store.
func NewBookingNumber(now time.Time) string {
	b := make([]byte, numberSuffixLen)
	_, _ = rand.Read(b)

	var sb strings.Builder
	sb.WriteString(now.Format("060102"))
	sb.WriteByte('-')
	for _, c := range b {
		sb.WriteByte(numberAlphabet[int(c)%len(numberAlphabet)])
	}
	return sb.String()
}

// StatusMessage is the text sent to the requester when a decision changes
// the booking status.
func StatusMessage(b *Booking, eventName string) string {
	switch b.Status {
	case BookingApproved:
		return fmt.Sprintf("Your booking %s for %s has been approved.", b.Number, eventName)
	case BookingDeclined:
		return fmt.Sprintf("Your booking %s for %s has been declined.", b.Number, eventName)
	default:
		return fmt.Sprintf("Your booking %s for %s has been moved back to pending review.", b.Number, eventName)
	}
}
