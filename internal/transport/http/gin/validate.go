package httpgin

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/kirinyoku/lodge-go/internal/domain"
)

var registerOnce sync.Once

// registerValidators adds the request tags gin's validator does not know.
func registerValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("gender", validGender)
		_ = v.RegisterValidation("hhmm", validHHMM)
	})
}

func validGender(fl validator.FieldLevel) bool {
	switch domain.Gender(fl.Field().String()) {
	case domain.GenderMale, domain.GenderFemale, domain.GenderOther:
		return true
	}
	return false
}

func validHHMM(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if len(s) != 5 {
		return false
	}
	_, err := time.Parse("15:04", s)
	return err == nil
}

// nextClock returns the first instant at or after now whose wall clock in
// loc reads hh:mm.
func nextClock(now time.Time, hhmm string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, err
	}

	local := now.In(loc)
	at := time.Date(local.Year(), local.Month(), local.Day(), t.Hour(), t.Minute(), 0, 0, loc)
	if at.Before(local) {
		at = at.AddDate(0, 0, 1)
	}
	return at, nil
}
