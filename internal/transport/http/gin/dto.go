package httpgin

import (
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/kirinyoku/lodge-go/internal/domain"
)

type PersonInput struct {
	Name   string `json:"name" binding:"required,max=200"`
	Age    int    `json:"age" binding:"gte=0,lte=130"`
	Gender string `json:"gender" binding:"required,gender"`
}

type ContactInput struct {
	Phone string `json:"phone" binding:"required,max=50"`
	Email string `json:"email" binding:"omitempty,email"`
}

type AddressInput struct {
	Line    string `json:"line" binding:"max=500"`
	City    string `json:"city" binding:"max=200"`
	Country string `json:"country" binding:"max=100"`
}

// StayRequestBody is the guest-facing form of domain.StayRequest.
type StayRequestBody struct {
	StayFrom time.Time     `json:"stay_from" binding:"required"`
	StayTo   time.Time     `json:"stay_to" binding:"required,gtfield=StayFrom"`
	Contact  ContactInput  `json:"contact"`
	Address  AddressInput  `json:"address"`
	People   []PersonInput `json:"people" binding:"required,min=1,dive"`
	Note     string        `json:"note" binding:"max=2000"`
}

func (b StayRequestBody) toDomain() domain.StayRequest {
	people := make([]domain.Person, 0, len(b.People))
	for _, p := range b.People {
		people = append(people, domain.Person{Name: p.Name, Age: p.Age, Gender: domain.Gender(p.Gender)})
	}

	return domain.StayRequest{
		StayFrom: b.StayFrom,
		StayTo:   b.StayTo,
		Contact:  domain.Contact{Phone: b.Contact.Phone, Email: b.Contact.Email},
		Address:  domain.Address{Line: b.Address.Line, City: b.Address.City, Country: b.Address.Country},
		People:   people,
		Note:     b.Note,
	}
}

type SubmitBookingRequest struct {
	EventID string `json:"event_id" binding:"required,uuid"`
	StayRequestBody
}

type AllocationInput struct {
	PersonIndex int    `json:"person_index" binding:"gte=0"`
	BedID       string `json:"bed_id" binding:"required,uuid"`
}

type DecisionRequest struct {
	Decision    string            `json:"decision" binding:"required,oneof=approved declined pending"`
	Allocations []AllocationInput `json:"allocations" binding:"omitempty,dive"`
	// Notify set to false suppresses the requester notification.
	Notify *bool `json:"notify"`
	// NotifyAt delays the requester notification to the next HH:MM in the
	// configured time zone.
	NotifyAt string `json:"notify_at" binding:"omitempty,hhmm"`
}

type RecipientsInput struct {
	UserIDs []string `json:"user_ids" binding:"omitempty,dive,uuid"`
	Roles   []string `json:"roles" binding:"omitempty,dive,required"`
	All     bool     `json:"all"`
}

type NotificationRequest struct {
	Message    string          `json:"message" binding:"required,max=2000"`
	Recipients RecipientsInput `json:"recipients"`
	SendAt     *time.Time      `json:"send_at"`
	TTLMinutes int             `json:"ttl_minutes" binding:"gte=0,lte=525600"`
}

type NotificationResponse struct {
	Created   int                       `json:"created"`
	Status    domain.NotificationStatus `json:"status,omitempty"`
	SendAt    *time.Time                `json:"send_at,omitempty"`
	ExpiresAt *time.Time                `json:"expires_at,omitempty"`
}

type PushEndpointRequest struct {
	Platform string `json:"platform" binding:"required,oneof=fcm apns webpush email"`
	Token    string `json:"token" binding:"required,max=4096"`
}

// OccupancyRow is one line of the admin occupancy listing.
type OccupancyRow struct {
	BookingID     uuid.UUID     `json:"booking_id"`
	BookingNumber string        `json:"booking_number"`
	PersonIndex   int           `json:"person_index"`
	Name          string        `json:"name"`
	Age           int           `json:"age"`
	Gender        domain.Gender `json:"gender"`
	BedID         uuid.UUID     `json:"bed_id"`
	RoomID        uuid.UUID     `json:"room_id"`
	BuildingID    uuid.UUID     `json:"building_id"`
	StayFrom      time.Time     `json:"stay_from"`
	StayTo        time.Time     `json:"stay_to"`
	Phone         string        `json:"phone"`
	City          string        `json:"city"`
}

func toOccupancyRows(recs []domain.Occupancy) ([]OccupancyRow, error) {
	rows := make([]OccupancyRow, 0, len(recs))
	if err := copier.Copy(&rows, &recs); err != nil {
		return nil, err
	}
	return rows, nil
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Kind    string `json:"kind"`
	Details any    `json:"details,omitempty"`
}
