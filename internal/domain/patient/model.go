package patient

import (
	"strconv"
	"time"
)

// Patient is a person registered at the clinic.
type Patient struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name" validate:"required,max=200"`
	Age       *int      `json:"age,omitempty" validate:"omitempty,gte=0,lte=150"`
	Gender    string    `json:"gender" validate:"max=20"`
	Phone     string    `json:"phone" validate:"max=30"`
	Address   string    `json:"address" validate:"max=500"`
	CreatedAt time.Time `json:"created_at"`
}

// AgeGender renders the "age / gender" pair shown on invoices. A missing
// value prints as "-".
func (p *Patient) AgeGender() string {
	age, gender := "-", p.Gender
	if p.Age != nil {
		age = strconv.Itoa(*p.Age)
	}
	if gender == "" {
		gender = "-"
	}
	return age + " / " + gender
}
