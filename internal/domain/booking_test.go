package domain

import (
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int, h int) time.Time {
	return time.Date(2024, 5, d, h, 0, 0, 0, time.UTC)
}

func TestStayRequest_Validate(t *testing.T) {
	ok := StayRequest{StayFrom: day(1, 14), StayTo: day(3, 10), People: []Person{{Name: "Maria"}}}
	require.NoError(t, ok.Validate())

	noPeople := ok
	noPeople.People = nil
	assert.ErrorIs(t, noPeople.Validate(), ErrNoPeople)

	reversed := ok
	reversed.StayFrom, reversed.StayTo = ok.StayTo, ok.StayFrom
	assert.ErrorIs(t, reversed.Validate(), ErrInvalidInterval)

	empty := ok
	empty.StayTo = empty.StayFrom
	assert.ErrorIs(t, empty.Validate(), ErrInvalidInterval)

	blank := ok
	blank.People = []Person{{Name: "Maria"}, {Name: "  "}}
	assert.ErrorIs(t, blank.Validate(), ErrPersonName)
}

func TestInterval_OverlapsIsHalfOpen(t *testing.T) {
	a := Interval{From: day(1, 0), To: day(3, 0)}

	assert.True(t, a.Overlaps(Interval{From: day(2, 0), To: day(4, 0)}))
	assert.True(t, a.Overlaps(Interval{From: day(1, 12), To: day(1, 13)}))
	assert.False(t, a.Overlaps(Interval{From: day(3, 0), To: day(5, 0)}), "touching end")
	assert.False(t, a.Overlaps(Interval{From: time.Date(2024, 4, 29, 0, 0, 0, 0, time.UTC), To: day(1, 0)}), "touching start")
}

func TestDay(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Madrid")
	require.NoError(t, err)

	iv := Day(time.Date(2024, 5, 2, 17, 45, 0, 0, loc))
	assert.True(t, iv.From.Equal(time.Date(2024, 5, 2, 0, 0, 0, 0, loc)))
	assert.True(t, iv.To.Equal(time.Date(2024, 5, 3, 0, 0, 0, 0, loc)))
}

func TestBooking_AllocationsConsistent(t *testing.T) {
	b := &Booking{
		Status:  BookingPending,
		Request: StayRequest{People: []Person{{Name: "A"}, {Name: "B"}}},
	}
	assert.True(t, b.AllocationsConsistent())

	b.Allocations = []Allocation{{PersonIndex: 0}}
	assert.False(t, b.AllocationsConsistent())

	b.Status = BookingApproved
	assert.False(t, b.AllocationsConsistent())

	b.Allocations = append(b.Allocations, Allocation{PersonIndex: 1})
	assert.True(t, b.AllocationsConsistent())
}

func TestBooking_Occupancies(t *testing.T) {
	bed := uuid.New()
	b := &Booking{
		ID:      uuid.New(),
		Number:  "240501-ABCDE",
		EventID: uuid.New(),
		Status:  BookingApproved,
		Request: StayRequest{
			StayFrom: day(1, 14),
			StayTo:   day(3, 10),
			Contact:  Contact{Phone: "+34 600"},
			Address:  Address{City: "Valencia"},
			People:   []Person{{Name: "A", Age: 40}, {Name: "B", Age: 9, Gender: GenderMale}},
		},
		Allocations: []Allocation{{PersonIndex: 1, BedID: bed}},
	}

	id := uuid.New()
	now := day(20, 8)
	recs := b.Occupancies(func() uuid.UUID { return id }, now)

	require.Len(t, recs, 1)
	o := recs[0]
	assert.Equal(t, id, o.ID)
	assert.Equal(t, b.ID, o.BookingID)
	assert.Equal(t, b.Number, o.BookingNumber)
	assert.Equal(t, bed, o.BedID)
	assert.Equal(t, "B", o.Name)
	assert.Equal(t, 9, o.Age)
	assert.Equal(t, GenderMale, o.Gender)
	assert.Equal(t, "Valencia", o.City)
	assert.Equal(t, b.Request.Interval(), o.Interval())
	assert.Nil(t, o.ReleasedAt)
}

func TestNewBookingNumber(t *testing.T) {
	re := regexp.MustCompile(`^240501-[0-9A-HJKMNP-TV-Z]{5}$`)

	seen := map[string]bool{}
	for range 50 {
		n := NewBookingNumber(day(1, 9))
		assert.Regexp(t, re, n)
		seen[n] = true
	}
	assert.Greater(t, len(seen), 1)
}

func TestStatusMessage(t *testing.T) {
	b := &Booking{Number: "240501-ABCDE", Status: BookingApproved}
	assert.Equal(t, "Your booking 240501-ABCDE for Retreat has been approved.", StatusMessage(b, "Retreat"))

	b.Status = BookingDeclined
	assert.Contains(t, StatusMessage(b, "Retreat"), "declined")

	b.Status = BookingPending
	assert.Contains(t, StatusMessage(b, "Retreat"), "pending review")
}
