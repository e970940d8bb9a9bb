package app

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/lodge-go/internal/auth"
	"github.com/kirinyoku/lodge-go/internal/domain"
	"github.com/kirinyoku/lodge-go/internal/repository/memory"
)

type demoData struct {
	event uuid.UUID
	admin auth.Principal
}

// seedDemo fills a memory store with one upcoming event, two buildings of
// two rooms with four beds each, and an admin user.
func seedDemo(store *memory.Store, now time.Time) demoData {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 14)

	event := domain.Event{
		ID:       uuid.New(),
		Name:     "Summer Gathering",
		StartsAt: start,
		EndsAt:   start.AddDate(0, 0, 3),
	}
	store.AddEvent(event)

	admin := domain.User{ID: uuid.New(), Name: "Lodging Desk", Roles: []string{domain.RoleAdmin}}
	store.AddUser(admin)

	for _, b := range []struct {
		name   string
		gender domain.Gender
	}{
		{"North Hall", domain.GenderFemale},
		{"South Hall", domain.GenderMale},
	} {
		building := domain.Building{ID: uuid.New(), Name: b.name, Gender: b.gender}
		for r := 1; r <= 2; r++ {
			room := domain.Room{ID: uuid.New(), BuildingID: building.ID, Name: fmt.Sprintf("%d0%d", r, r)}
			for n := 1; n <= 4; n++ {
				store.AddBed(domain.BedPlacement{
					Bed:      domain.Bed{ID: uuid.New(), RoomID: room.ID, Name: fmt.Sprintf("Bed %d", n)},
					Room:     room,
					Building: building,
				})
			}
		}
	}

	return demoData{
		event: event.ID,
		admin: auth.Principal{UserID: admin.ID, Roles: admin.Roles},
	}
}
