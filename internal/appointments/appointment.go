package appointments

import "time"

// Status values for an appointment record.
const (
	StatusConfirmed   = "confirmed"
	StatusCancelled   = "cancelled"
	StatusRescheduled = "rescheduled"
)

// Appointment is one confirmed booking. Records are append-only; status
// changes are owned by the notification subsystem, not this core.
type Appointment struct {
	AppointmentID   string    `json:"appointmentId"`
	PatientID       string    `json:"patientId"`
	PatientName     string    `json:"patientName"`
	PatientNumber   string    `json:"patientNumber"`
	DoctorID        string    `json:"doctorId"`
	DoctorName      string    `json:"doctorName"`
	DoctorNumber    string    `json:"doctorNumber"`
	AppointmentDate string    `json:"appointmentDate"`
	AppointmentTime string    `json:"appointmentTime"`
	Status          string    `json:"appointmentStatus"`
	PatientConcern  string    `json:"patientConcern"`
	CreatedAt       time.Time `json:"createdAt"`
}
