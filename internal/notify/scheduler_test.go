package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vedya-health/vedya-platform/internal/appointments"
)

type recordingSender struct {
	mu     sync.Mutex
	sent   []sentMessage
	failTo string
}

type sentMessage struct {
	to   string
	body string
}

func (s *recordingSender) SendWhatsApp(_ context.Context, to, body string) error {
	if s.failTo != "" && to == s.failTo {
		return errors.New("carrier rejected")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, sentMessage{to: to, body: body})
	return nil
}

func (s *recordingSender) messages() []sentMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sentMessage(nil), s.sent...)
}

func seedAppointment(t *testing.T, store appointments.Store, id, date, slot string) {
	t.Helper()
	_, err := store.Append(context.Background(), appointments.Appointment{
		AppointmentID:   id,
		PatientID:       "919900112233",
		PatientName:     "Asha Rao",
		PatientNumber:   "919900112233",
		DoctorID:        "DOC003",
		DoctorName:      "Dr. Ramesh Yadav",
		DoctorNumber:    "1234567892",
		AppointmentDate: date,
		AppointmentTime: slot,
		Status:          appointments.StatusConfirmed,
		PatientConcern:  "knee pain",
	})
	require.NoError(t, err)
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestSchedulerSendsDayBeforeReminders(t *testing.T) {
	store := appointments.NewMemoryStore()
	seedAppointment(t, store, "appt-1", "2024-03-21", "10:00 AM - 12:00 PM")

	sender := &recordingSender{}
	// 20 hours before the appointment: inside the day-before window, outside
	// the hour-before one.
	now := time.Date(2024, 3, 20, 14, 0, 0, 0, time.Local)
	s := NewScheduler(store, sender, nil, WithClock(fixedClock(now)))

	s.Sweep(context.Background())

	msgs := sender.messages()
	require.Len(t, msgs, 2)
	assert.Contains(t, msgs[0].body, "tomorrow at 10:00 AM - 12:00 PM")
	assert.Contains(t, msgs[0].body, "knee pain")
	assert.Contains(t, msgs[1].body, "patient Asha Rao")
}

func TestSchedulerHourBeforeAddsSecondReminder(t *testing.T) {
	store := appointments.NewMemoryStore()
	seedAppointment(t, store, "appt-1", "2024-03-21", "10:00 AM - 12:00 PM")

	sender := &recordingSender{}
	now := time.Date(2024, 3, 21, 9, 30, 0, 0, time.Local)
	s := NewScheduler(store, sender, nil, WithClock(fixedClock(now)))

	s.Sweep(context.Background())

	// day_before and hour_before, each to patient and doctor.
	assert.Len(t, sender.messages(), 4)
}

func TestSchedulerDeduplicatesAcrossSweeps(t *testing.T) {
	store := appointments.NewMemoryStore()
	seedAppointment(t, store, "appt-1", "2024-03-21", "10:00 AM - 12:00 PM")

	sender := &recordingSender{}
	now := time.Date(2024, 3, 20, 14, 0, 0, 0, time.Local)
	s := NewScheduler(store, sender, nil, WithClock(fixedClock(now)))

	s.Sweep(context.Background())
	s.Sweep(context.Background())
	s.Sweep(context.Background())

	assert.Len(t, sender.messages(), 2)
}

func TestSchedulerSkipsPastAppointments(t *testing.T) {
	store := appointments.NewMemoryStore()
	seedAppointment(t, store, "appt-1", "2024-03-20", "9:00 AM - 10:00 AM")

	sender := &recordingSender{}
	now := time.Date(2024, 3, 25, 12, 0, 0, 0, time.Local)
	s := NewScheduler(store, sender, nil, WithClock(fixedClock(now)))

	s.Sweep(context.Background())

	assert.Empty(t, sender.messages())
}

func TestSchedulerSkipsNonConfirmed(t *testing.T) {
	store := appointments.NewMemoryStore()
	_, err := store.Append(context.Background(), appointments.Appointment{
		AppointmentID:   "appt-1",
		PatientNumber:   "919900112233",
		DoctorNumber:    "1234567892",
		AppointmentDate: "2024-03-21",
		AppointmentTime: "10:00 AM - 12:00 PM",
		Status:          appointments.StatusCancelled,
	})
	require.NoError(t, err)

	sender := &recordingSender{}
	now := time.Date(2024, 3, 20, 14, 0, 0, 0, time.Local)
	s := NewScheduler(store, sender, nil, WithClock(fixedClock(now)))

	s.Sweep(context.Background())

	assert.Empty(t, sender.messages())
}

func TestSchedulerRetriesFailedSends(t *testing.T) {
	store := appointments.NewMemoryStore()
	seedAppointment(t, store, "appt-1", "2024-03-21", "10:00 AM - 12:00 PM")

	sender := &recordingSender{failTo: "919900112233"}
	now := time.Date(2024, 3, 20, 14, 0, 0, 0, time.Local)
	s := NewScheduler(store, sender, nil, WithClock(fixedClock(now)))

	s.Sweep(context.Background())
	require.Len(t, sender.messages(), 1) // doctor only

	// The patient send succeeds once the carrier recovers.
	sender.failTo = ""
	s.Sweep(context.Background())
	assert.Len(t, sender.messages(), 2)
}

func TestRenderReminderTemplates(t *testing.T) {
	appt := appointments.Appointment{
		PatientName:     "Asha Rao",
		DoctorName:      "Dr. Ramesh Yadav",
		AppointmentTime: "10:00 AM - 12:00 PM",
	}

	body := RenderReminder(appt, KindDayBefore, RecipientPatient)
	assert.Contains(t, body, "Dear Asha Rao")
	assert.Contains(t, body, "Not specified")

	body = RenderReminder(appt, KindHourBefore, RecipientDoctor)
	assert.Contains(t, body, "Dear Dr. Ramesh Yadav")
	assert.Contains(t, body, "in one hour at 10:00 AM - 12:00 PM")
}
