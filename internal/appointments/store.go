package appointments

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound indicates no appointment exists with the requested ID.
var ErrNotFound = errors.New("appointments: not found")

// Store persists appointment records. Append must be safe under concurrent
// calls from different sessions.
type Store interface {
	Append(ctx context.Context, appt Appointment) (string, error)
	List(ctx context.Context) ([]Appointment, error)
	ListByPatientID(ctx context.Context, patientID string) ([]Appointment, error)
	ListByPatientNumber(ctx context.Context, patientNumber string) ([]Appointment, error)
	GetByID(ctx context.Context, id string) (*Appointment, error)
}

// MemoryStore is an in-memory Store used in development and tests.
type MemoryStore struct {
	mu    sync.RWMutex
	appts []Appointment
	byID  map[string]int
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]int)}
}

// Append stores the appointment and returns its ID.
func (s *MemoryStore) Append(ctx context.Context, appt Appointment) (string, error) {
	if appt.AppointmentID == "" {
		return "", errors.New("appointments: appointment id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[appt.AppointmentID] = len(s.appts)
	s.appts = append(s.appts, appt)
	return appt.AppointmentID, nil
}

// List returns all appointments in insertion order.
func (s *MemoryStore) List(ctx context.Context) ([]Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Appointment, len(s.appts))
	copy(out, s.appts)
	return out, nil
}

// ListByPatientID returns the appointments booked by a patient. The dialogue
// engine records its session ID as the patient ID, so this is the lookup the
// show action uses.
func (s *MemoryStore) ListByPatientID(ctx context.Context, patientID string) ([]Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Appointment
	for _, a := range s.appts {
		if a.PatientID == patientID {
			out = append(out, a)
		}
	}
	return out, nil
}

// ListByPatientNumber returns the appointments booked under a phone number.
func (s *MemoryStore) ListByPatientNumber(ctx context.Context, patientNumber string) ([]Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Appointment
	for _, a := range s.appts {
		if a.PatientNumber == patientNumber {
			out = append(out, a)
		}
	}
	return out, nil
}

// GetByID returns a single appointment or ErrNotFound.
func (s *MemoryStore) GetByID(ctx context.Context, id string) (*Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	appt := s.appts[idx]
	return &appt, nil
}
