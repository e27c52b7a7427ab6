package appointment

import "context"

type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id int64) (*Appointment, error)
	SetStatus(ctx context.Context, id int64, status string) error
	// List returns appointments ordered by date and time with the patient
	// name filled in. patientID 0 lists every patient.
	List(ctx context.Context, patientID int64, limit, offset int) ([]*Appointment, int, error)
}

const (
	appointmentFrom = `appointments a JOIN patients p ON p.id = a.patient_id`
	listOrder       = "a.date ASC, a.time ASC, a.id ASC"
)
