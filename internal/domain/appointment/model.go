package appointment

import "time"

const (
	StatusScheduled = "Scheduled"
	StatusCancelled = "Cancelled"
)

type Appointment struct {
	ID          int64     `json:"id"`
	PatientID   int64     `json:"patient_id" validate:"required,gt=0"`
	PatientName string    `json:"patient_name,omitempty"`
	Doctor      string    `json:"doctor" validate:"required,max=200"`
	Date        string    `json:"date" validate:"required,datetime=2006-01-02"`
	Time        string    `json:"time" validate:"required,datetime=15:04"`
	Reason      string    `json:"reason" validate:"max=500"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}
