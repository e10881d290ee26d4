package appointments

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleAppointment(id string) Appointment {
	return Appointment{
		AppointmentID:   id,
		PatientID:       "PAT00001",
		PatientName:     "Ravi Teja",
		PatientNumber:   "9876543210",
		DoctorID:        "DOC003",
		DoctorName:      "Dr. Ramesh Yadav",
		DoctorNumber:    "1234567892",
		AppointmentDate: "2024-03-21",
		AppointmentTime: "10:00 AM - 12:00 PM",
		Status:          StatusConfirmed,
		PatientConcern:  "Knee pain",
		CreatedAt:       time.Now().UTC(),
	}
}

func TestMemoryStoreAppendAndGet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	id, err := s.Append(ctx, sampleAppointment("apt-1"))
	require.NoError(t, err)
	assert.Equal(t, "apt-1", id)

	got, err := s.GetByID(ctx, "apt-1")
	require.NoError(t, err)
	assert.Equal(t, "Dr. Ramesh Yadav", got.DoctorName)

	_, err = s.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreRejectsEmptyID(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.Append(context.Background(), Appointment{})
	assert.Error(t, err)
}

func TestMemoryStoreListByPatientNumber(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	a := sampleAppointment("apt-1")
	b := sampleAppointment("apt-2")
	b.PatientNumber = "1112223333"
	_, err := s.Append(ctx, a)
	require.NoError(t, err)
	_, err = s.Append(ctx, b)
	require.NoError(t, err)

	got, err := s.ListByPatientNumber(ctx, "9876543210")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "apt-1", got[0].AppointmentID)
}

func TestMemoryStoreListByPatientID(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	a := sampleAppointment("apt-1")
	b := sampleAppointment("apt-2")
	b.PatientID = "919900112233"
	b.PatientNumber = "0000000000"
	_, err := s.Append(ctx, a)
	require.NoError(t, err)
	_, err = s.Append(ctx, b)
	require.NoError(t, err)

	got, err := s.ListByPatientID(ctx, "919900112233")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "apt-2", got[0].AppointmentID)
}

func TestMemoryStoreConcurrentAppends(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.Append(ctx, sampleAppointment(fmt.Sprintf("apt-%d", i)))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, n)
}

func TestPostgresStoreAppend(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewPostgresStore(db)
	appt := sampleAppointment("apt-1")

	mock.ExpectExec("INSERT INTO appointments").
		WithArgs(appt.AppointmentID, appt.PatientID, appt.PatientName, appt.PatientNumber,
			appt.DoctorID, appt.DoctorName, appt.DoctorNumber,
			appt.AppointmentDate, appt.AppointmentTime, appt.Status,
			appt.PatientConcern, appt.CreatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	id, err := s.Append(context.Background(), appt)
	require.NoError(t, err)
	assert.Equal(t, "apt-1", id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreAppendFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewPostgresStore(db)
	appt := sampleAppointment("apt-1")

	mock.ExpectExec("INSERT INTO appointments").
		WillReturnError(fmt.Errorf("disk full"))

	_, err = s.Append(context.Background(), appt)
	assert.ErrorContains(t, err, "failed to insert")
}

func TestPostgresStoreListByPatientNumber(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewPostgresStore(db)
	now := time.Now().UTC()

	cols := []string{
		"appointment_id", "patient_id", "patient_name", "patient_number",
		"doctor_id", "doctor_name", "doctor_number",
		"appointment_date", "appointment_time", "appointment_status",
		"patient_concern", "created_at",
	}
	mock.ExpectQuery("SELECT (.+) FROM appointments").
		WithArgs("9876543210").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(
			"apt-1", "PAT00001", "Ravi Teja", "9876543210",
			"DOC003", "Dr. Ramesh Yadav", "1234567892",
			"2024-03-21", "10:00 AM - 12:00 PM", StatusConfirmed,
			"Knee pain", now,
		))

	got, err := s.ListByPatientNumber(context.Background(), "9876543210")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Dr. Ramesh Yadav", got[0].DoctorName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreListByPatientID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewPostgresStore(db)
	now := time.Now().UTC()

	cols := []string{
		"appointment_id", "patient_id", "patient_name", "patient_number",
		"doctor_id", "doctor_name", "doctor_number",
		"appointment_date", "appointment_time", "appointment_status",
		"patient_concern", "created_at",
	}
	mock.ExpectQuery("SELECT (.+) FROM appointments WHERE patient_id").
		WithArgs("919900112233").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(
			"apt-2", "919900112233", "Unknown", "0000000000",
			"DOC003", "Dr. Ramesh Yadav", "1234567892",
			"2024-03-21", "10:00 AM - 12:00 PM", StatusConfirmed,
			"General checkup", now,
		))

	got, err := s.ListByPatientID(context.Background(), "919900112233")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "apt-2", got[0].AppointmentID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewPostgresStore(db)
	mock.ExpectQuery("SELECT (.+) FROM appointments").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"appointment_id"}))

	_, err = s.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
