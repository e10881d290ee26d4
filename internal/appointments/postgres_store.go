package appointments

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// PostgresStore persists appointments to PostgreSQL for long-term history and
// for the notification service to poll.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a Postgres-backed appointment store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	if db == nil {
		return nil
	}
	return &PostgresStore{db: db}
}

const apptColumns = `appointment_id, patient_id, patient_name, patient_number,
	       doctor_id, doctor_name, doctor_number,
	       appointment_date, appointment_time, appointment_status,
	       patient_concern, created_at`

// Append inserts one appointment row. A duplicate ID is a hard error; commit
// runs at most once per booking flow so retries get fresh IDs.
func (s *PostgresStore) Append(ctx context.Context, appt Appointment) (string, error) {
	if s == nil || s.db == nil {
		return "", fmt.Errorf("appointments: store not configured")
	}
	if appt.CreatedAt.IsZero() {
		appt.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO appointments (
			appointment_id, patient_id, patient_name, patient_number,
			doctor_id, doctor_name, doctor_number,
			appointment_date, appointment_time, appointment_status,
			patient_concern, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, appt.AppointmentID, appt.PatientID, appt.PatientName, appt.PatientNumber,
		appt.DoctorID, appt.DoctorName, appt.DoctorNumber,
		appt.AppointmentDate, appt.AppointmentTime, appt.Status,
		appt.PatientConcern, appt.CreatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("appointments: failed to insert: %w", err)
	}
	return appt.AppointmentID, nil
}

// List returns all appointments ordered by creation time.
func (s *PostgresStore) List(ctx context.Context) ([]Appointment, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+apptColumns+`
		FROM appointments
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("appointments: failed to list: %w", err)
	}
	defer rows.Close()
	return scanAppointments(rows)
}

// ListByPatientID returns appointments booked by a patient, keyed by the
// dialogue session ID recorded at commit time.
func (s *PostgresStore) ListByPatientID(ctx context.Context, patientID string) ([]Appointment, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+apptColumns+`
		FROM appointments
		WHERE patient_id = $1
		ORDER BY created_at ASC
	`, patientID)
	if err != nil {
		return nil, fmt.Errorf("appointments: failed to list by patient id: %w", err)
	}
	defer rows.Close()
	return scanAppointments(rows)
}

// ListByPatientNumber returns appointments booked under a phone number.
func (s *PostgresStore) ListByPatientNumber(ctx context.Context, patientNumber string) ([]Appointment, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+apptColumns+`
		FROM appointments
		WHERE patient_number = $1
		ORDER BY created_at ASC
	`, patientNumber)
	if err != nil {
		return nil, fmt.Errorf("appointments: failed to list by patient: %w", err)
	}
	defer rows.Close()
	return scanAppointments(rows)
}

// GetByID returns one appointment or ErrNotFound.
func (s *PostgresStore) GetByID(ctx context.Context, id string) (*Appointment, error) {
	if s == nil || s.db == nil {
		return nil, ErrNotFound
	}
	var a Appointment
	err := s.db.QueryRowContext(ctx, `
		SELECT `+apptColumns+`
		FROM appointments
		WHERE appointment_id = $1
	`, id).Scan(
		&a.AppointmentID, &a.PatientID, &a.PatientName, &a.PatientNumber,
		&a.DoctorID, &a.DoctorName, &a.DoctorNumber,
		&a.AppointmentDate, &a.AppointmentTime, &a.Status,
		&a.PatientConcern, &a.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("appointments: failed to get: %w", err)
	}
	return &a, nil
}

func scanAppointments(rows *sql.Rows) ([]Appointment, error) {
	var out []Appointment
	for rows.Next() {
		var a Appointment
		err := rows.Scan(
			&a.AppointmentID, &a.PatientID, &a.PatientName, &a.PatientNumber,
			&a.DoctorID, &a.DoctorName, &a.DoctorNumber,
			&a.AppointmentDate, &a.AppointmentTime, &a.Status,
			&a.PatientConcern, &a.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("appointments: failed to scan row: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("appointments: row iteration: %w", err)
	}
	return out, nil
}
