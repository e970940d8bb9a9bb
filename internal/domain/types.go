package domain

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingPending  BookingStatus = "pending"
	BookingApproved BookingStatus = "approved"
	BookingDeclined BookingStatus = "declined"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingApproved, BookingDeclined:
		return true
	}
	return false
}

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

type Person struct {
	Name   string `json:"name"`
	Age    int    `json:"age"`
	Gender Gender `json:"gender"`
}

type Contact struct {
	Phone string `json:"phone"`
	Email string `json:"email"`
}

type Address struct {
	Line    string `json:"line"`
	City    string `json:"city"`
	Country string `json:"country"`
}

// StayRequest is the structured payload a guest submits. The stay covers
// nights in [StayFrom, StayTo).
type StayRequest struct {
	StayFrom time.Time `json:"stay_from"`
	StayTo   time.Time `json:"stay_to"`
	Contact  Contact   `json:"contact"`
	Address  Address   `json:"address"`
	People   []Person  `json:"people"`
	Note     string    `json:"note,omitempty"`
}

func (r StayRequest) Interval() Interval {
	return Interval{From: r.StayFrom, To: r.StayTo}
}

// Allocation maps one person of a booking to one bed.
type Allocation struct {
	PersonIndex int       `json:"person_index"`
	BedID       uuid.UUID `json:"bed_id"`
	RoomID      uuid.UUID `json:"room_id"`
	BuildingID  uuid.UUID `json:"building_id"`

	BedName      string `json:"bed_name,omitempty"`
	RoomName     string `json:"room_name,omitempty"`
	BuildingName string `json:"building_name,omitempty"`
}

type Booking struct {
	ID          uuid.UUID     `json:"id"`
	Number      string        `json:"number"`
	RequesterID uuid.UUID     `json:"requester_id"`
	EventID     uuid.UUID     `json:"event_id"`
	Request     StayRequest   `json:"request"`
	Status      BookingStatus `json:"status"`
	Allocations []Allocation  `json:"allocations"`
	Version     int64         `json:"version"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`

	RequesterName string `json:"requester_name,omitempty"`
	EventName     string `json:"event_name,omitempty"`
}

// Occupancy is one allocated person of an approved booking. ReleasedAt is
// set once the owning event has concluded and the bed went back to the pool.
type Occupancy struct {
	ID            uuid.UUID  `json:"id"`
	BookingID     uuid.UUID  `json:"booking_id"`
	BookingNumber string     `json:"booking_number"`
	EventID       uuid.UUID  `json:"event_id"`
	BedID         uuid.UUID  `json:"bed_id"`
	RoomID        uuid.UUID  `json:"room_id"`
	BuildingID    uuid.UUID  `json:"building_id"`
	PersonIndex   int        `json:"person_index"`
	Name          string     `json:"name"`
	Age           int        `json:"age"`
	Gender        Gender     `json:"gender"`
	StayFrom      time.Time  `json:"stay_from"`
	StayTo        time.Time  `json:"stay_to"`
	Phone         string     `json:"phone"`
	City          string     `json:"city"`
	ReleasedAt    *time.Time `json:"released_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func (o Occupancy) Interval() Interval {
	return Interval{From: o.StayFrom, To: o.StayTo}
}

type NotificationStatus string

const (
	NotificationSent      NotificationStatus = "sent"
	NotificationScheduled NotificationStatus = "scheduled"
)

type NotificationTarget string

const (
	TargetUser  NotificationTarget = "user"
	TargetAdmin NotificationTarget = "admin"
)

type Notification struct {
	ID          uuid.UUID          `json:"id"`
	RecipientID uuid.UUID          `json:"recipient_id"`
	Target      NotificationTarget `json:"target"`
	Message     string             `json:"message"`
	Status      NotificationStatus `json:"status"`
	SendAt      time.Time          `json:"send_at"`
	ExpiresAt   time.Time          `json:"expires_at"`
	CreatedAt   time.Time          `json:"created_at"`
}

type PushPlatform string

const (
	PlatformFCM     PushPlatform = "fcm"
	PlatformAPNS    PushPlatform = "apns"
	PlatformWebPush PushPlatform = "webpush"
	PlatformEmail   PushPlatform = "email"
)

type PushEndpoint struct {
	ID        uuid.UUID    `json:"id"`
	UserID    uuid.UUID    `json:"user_id"`
	Platform  PushPlatform `json:"platform"`
	Token     string       `json:"token"`
	CreatedAt time.Time    `json:"created_at"`
}

// Capacity hierarchy and directory records are owned by other services and
// only read here.

type Building struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Gender Gender    `json:"gender"`
}

type Room struct {
	ID         uuid.UUID `json:"id"`
	BuildingID uuid.UUID `json:"building_id"`
	Name       string    `json:"name"`
}

type Bed struct {
	ID     uuid.UUID `json:"id"`
	RoomID uuid.UUID `json:"room_id"`
	Name   string    `json:"name"`
}

type BedPlacement struct {
	Bed      Bed      `json:"bed"`
	Room     Room     `json:"room"`
	Building Building `json:"building"`
}

type Event struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
}

const RoleAdmin = "admin"

type User struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Roles []string  `json:"roles"`
}

type BedAvailability struct {
	Placement BedPlacement `json:"placement"`
	Free      bool         `json:"free"`
	Occupants []Occupancy  `json:"occupants,omitempty"`
}
