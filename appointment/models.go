package appointment

import "time"

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// Record is the domain representation of a booked appointment.
type Record struct {
	ID        string
	UserID    string
	PatientID *string
	Procedure string
	Box       string
	StartsAt  time.Time
	EndsAt    time.Time
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateParams enumerates the fields required to book an appointment.
type CreateParams struct {
	PatientID *string
	Procedure string
	Box       string
	StartsAt  time.Time
	EndsAt    time.Time
}

// Overview is the admin dashboard payload: every appointment plus the
// per-status counters shown in the header cards.
type Overview struct {
	Appointments []Record
	Total        int
	Confirmed    int
	Pending      int
	Cancelled    int
}
