package notify

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/vedya-health/vedya-platform/internal/appointments"
	"github.com/vedya-health/vedya-platform/pkg/logging"
)

// Scheduler watches the appointment store and sends day-before and
// hour-before reminders to both the patient and the doctor. Reminders are
// deduplicated by (appointmentID, kind, recipient), so repeated sweeps over
// the same rows send each message once.
type Scheduler struct {
	store  appointments.Store
	sender WhatsAppSender
	logger *logging.Logger

	pollInterval time.Duration
	dayBefore    time.Duration
	hourBefore   time.Duration
	now          func() time.Time

	mu   sync.Mutex
	sent map[string]struct{}
}

// SchedulerOption configures the scheduler.
type SchedulerOption func(*Scheduler)

// WithPollInterval overrides how often the store is swept.
func WithPollInterval(d time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		if d > 0 {
			s.pollInterval = d
		}
	}
}

// WithReminderOffsets overrides the day-before and hour-before lead times.
func WithReminderOffsets(dayBefore, hourBefore time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		if dayBefore > 0 {
			s.dayBefore = dayBefore
		}
		if hourBefore > 0 {
			s.hourBefore = hourBefore
		}
	}
}

// WithClock overrides the time source, used by tests.
func WithClock(now func() time.Time) SchedulerOption {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// NewScheduler creates a reminder scheduler.
func NewScheduler(store appointments.Store, sender WhatsAppSender, logger *logging.Logger, opts ...SchedulerOption) *Scheduler {
	if store == nil {
		panic("notify: appointment store cannot be nil")
	}
	if sender == nil {
		panic("notify: sender cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}

	s := &Scheduler{
		store:        store,
		sender:       sender,
		logger:       logger,
		pollInterval: time.Minute,
		dayBefore:    24 * time.Hour,
		hourBefore:   time.Hour,
		now:          time.Now,
		sent:         make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run sweeps the store on every poll tick until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep checks every confirmed appointment and sends any due reminders.
func (s *Scheduler) Sweep(ctx context.Context) {
	appts, err := s.store.List(ctx)
	if err != nil {
		s.logger.Error("failed to list appointments for reminders", "error", err)
		return
	}

	now := s.now()
	for _, appt := range appts {
		if appt.Status != appointments.StatusConfirmed {
			continue
		}

		start, err := appointmentStart(appt)
		if err != nil {
			s.logger.Warn("skipping appointment with unparseable schedule",
				"appointment_id", appt.AppointmentID,
				"error", err.Error(),
			)
			continue
		}

		remaining := start.Sub(now)
		if remaining <= 0 {
			continue
		}
		if remaining <= s.dayBefore {
			s.deliver(ctx, appt, KindDayBefore)
		}
		if remaining <= s.hourBefore {
			s.deliver(ctx, appt, KindHourBefore)
		}
	}
}

func (s *Scheduler) deliver(ctx context.Context, appt appointments.Appointment, kind ReminderKind) {
	for _, rec := range []struct {
		who    Recipient
		number string
	}{
		{RecipientPatient, appt.PatientNumber},
		{RecipientDoctor, appt.DoctorNumber},
	} {
		if rec.number == "" {
			continue
		}

		key := dedupeKey(appt.AppointmentID, kind, rec.who)
		s.mu.Lock()
		_, already := s.sent[key]
		if !already {
			s.sent[key] = struct{}{}
		}
		s.mu.Unlock()
		if already {
			continue
		}

		body := RenderReminder(appt, kind, rec.who)
		if err := s.sender.SendWhatsApp(ctx, rec.number, body); err != nil {
			s.logger.Error("failed to send reminder",
				"appointment_id", appt.AppointmentID,
				"kind", string(kind),
				"recipient", string(rec.who),
				"error", err.Error(),
			)
			// Allow a retry on the next sweep.
			s.mu.Lock()
			delete(s.sent, key)
			s.mu.Unlock()
			continue
		}

		s.logger.Info("reminder sent",
			"appointment_id", appt.AppointmentID,
			"kind", string(kind),
			"recipient", string(rec.who),
		)
	}
}

func dedupeKey(appointmentID string, kind ReminderKind, who Recipient) string {
	return appointmentID + "|" + string(kind) + "|" + string(who)
}

// appointmentStart parses the stored date and the slot's start half into a
// local timestamp, e.g. "2024-03-21" + "10:00 AM - 12:00 PM".
func appointmentStart(appt appointments.Appointment) (time.Time, error) {
	startLabel := appt.AppointmentTime
	if idx := strings.Index(startLabel, " - "); idx >= 0 {
		startLabel = startLabel[:idx]
	}

	ts, err := time.ParseInLocation("2006-01-02 3:04 PM", appt.AppointmentDate+" "+startLabel, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("notify: parsing appointment schedule: %w", err)
	}
	return ts, nil
}
