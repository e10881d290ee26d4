package notify

import (
	"fmt"

	"github.com/vedya-health/vedya-platform/internal/appointments"
)

// ReminderKind distinguishes the two reminder offsets.
type ReminderKind string

const (
	KindDayBefore  ReminderKind = "day_before"
	KindHourBefore ReminderKind = "hour_before"
)

// Recipient distinguishes who a reminder message addresses.
type Recipient string

const (
	RecipientPatient Recipient = "patient"
	RecipientDoctor  Recipient = "doctor"
)

func patientDayBefore(appt appointments.Appointment) string {
	return fmt.Sprintf("Dear %s,\n\nThis is a reminder that you have an appointment with %s tomorrow at %s for your concern: %s. Please arrive 15 minutes before your scheduled time.",
		appt.PatientName, appt.DoctorName, appt.AppointmentTime, concernOrDefault(appt))
}

func patientHourBefore(appt appointments.Appointment) string {
	return fmt.Sprintf("Dear %s,\n\nThis is a reminder that your appointment with %s is in one hour at %s. We're looking forward to seeing you soon.",
		appt.PatientName, appt.DoctorName, appt.AppointmentTime)
}

func doctorDayBefore(appt appointments.Appointment) string {
	return fmt.Sprintf("Dear %s,\n\nThis is a reminder that you have an appointment with patient %s tomorrow at %s. The patient's concern is: %s.",
		appt.DoctorName, appt.PatientName, appt.AppointmentTime, concernOrDefault(appt))
}

func doctorHourBefore(appt appointments.Appointment) string {
	return fmt.Sprintf("Dear %s,\n\nThis is a reminder that your appointment with patient %s is in one hour at %s.",
		appt.DoctorName, appt.PatientName, appt.AppointmentTime)
}

func concernOrDefault(appt appointments.Appointment) string {
	if appt.PatientConcern == "" {
		return "Not specified"
	}
	return appt.PatientConcern
}

// RenderReminder produces the message body for one reminder.
func RenderReminder(appt appointments.Appointment, kind ReminderKind, to Recipient) string {
	switch {
	case to == RecipientPatient && kind == KindDayBefore:
		return patientDayBefore(appt)
	case to == RecipientPatient && kind == KindHourBefore:
		return patientHourBefore(appt)
	case to == RecipientDoctor && kind == KindDayBefore:
		return doctorDayBefore(appt)
	default:
		return doctorHourBefore(appt)
	}
}
