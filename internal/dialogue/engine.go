package dialogue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vedya-health/vedya-platform/internal/appointments"
	"github.com/vedya-health/vedya-platform/internal/catalog"
	"github.com/vedya-health/vedya-platform/internal/observability/metrics"
	"github.com/vedya-health/vedya-platform/pkg/logging"
)

const (
	apologyReply = "I'm sorry, I'm having trouble responding right now. Please try again in a moment."

	farewellReply = "Thank you for using our service. Feel free to reach out if you need any help in the future!"
)

// Engine is the per-session booking state machine. For each inbound
// (sessionID, text) pair it produces exactly one outbound utterance and a
// possibly mutated session. Turns for different sessions may run
// concurrently; turns for the same session are serialized by a keyed mutex.
type Engine struct {
	catalog      *catalog.Catalog
	sessions     SessionStore
	gateway      Gateway
	store        appointments.Store
	logger       *logging.Logger
	metrics      *metrics.DialogueMetrics
	historyLimit int

	mu    sync.Mutex
	locks map[string]*sessionLock
}

// sessionLock serializes turns for one session. Refcounting lets the engine
// drop the map entry once the last waiter releases, so the map does not grow
// with every phone number the service has ever seen.
type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func NewEngine(cat *catalog.Catalog, sessions SessionStore, gateway Gateway, store appointments.Store, logger *logging.Logger, m *metrics.DialogueMetrics, historyLimit int) *Engine {
	if cat == nil {
		panic("dialogue: catalog cannot be nil")
	}
	if sessions == nil {
		panic("dialogue: session store cannot be nil")
	}
	if gateway == nil {
		panic("dialogue: gateway cannot be nil")
	}
	if store == nil {
		panic("dialogue: appointment store cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	return &Engine{
		catalog:      cat,
		sessions:     sessions,
		gateway:      gateway,
		store:        store,
		logger:       logger,
		metrics:      m,
		historyLimit: historyLimit,
		locks:        make(map[string]*sessionLock),
	}
}

func (e *Engine) acquireSession(id string) *sessionLock {
	e.mu.Lock()
	lock, ok := e.locks[id]
	if !ok {
		lock = &sessionLock{}
		e.locks[id] = lock
	}
	lock.refs++
	e.mu.Unlock()

	lock.mu.Lock()
	return lock
}

func (e *Engine) releaseSession(id string, lock *sessionLock) {
	lock.mu.Unlock()

	e.mu.Lock()
	lock.refs--
	if lock.refs == 0 {
		delete(e.locks, id)
	}
	e.mu.Unlock()
}

// HandleMessage processes one inbound turn and returns the reply text. An
// unknown sessionID creates a fresh session. Model failures produce an
// apology reply with the session left untouched; they never return an error
// to the caller.
func (e *Engine) HandleMessage(ctx context.Context, sessionID, text string) (string, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return "", fmt.Errorf("dialogue: session id is required")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "I didn't catch that. Could you say it again?", nil
	}

	lock := e.acquireSession(sessionID)
	defer e.releaseSession(sessionID, lock)

	session, err := e.sessions.Get(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, ErrSessionNotFound) {
			return "", fmt.Errorf("dialogue: loading session %s: %w", sessionID, err)
		}
		session = NewSession(sessionID)
	}

	stage := session.Stage
	reply, err := e.handleTurn(ctx, session, text)
	if err != nil {
		// Model failure: apologize, leave the session as it was.
		e.metrics.ObserveTurn(string(stage), "model_error")
		e.logger.Warn("turn failed, session unchanged",
			"session_id", sessionID,
			"stage", string(stage),
			"error", err.Error(),
		)
		return apologyReply, nil
	}

	if err := e.sessions.Put(ctx, session); err != nil {
		e.metrics.ObserveTurn(string(stage), "store_error")
		return "", fmt.Errorf("dialogue: saving session %s: %w", sessionID, err)
	}
	e.metrics.ObserveTurn(string(stage), "ok")
	return reply, nil
}

func (e *Engine) handleTurn(ctx context.Context, session *Session, text string) (string, error) {
	switch session.Stage {
	case StageClassifying:
		return e.handleClassifying(ctx, session, text)
	case StageSelectingDoctor:
		return e.handleSelectingDoctor(ctx, session, text)
	case StageSelectingSlot, StageConfirming:
		return e.handleSelectingSlot(ctx, session, text)
	default:
		return e.handleGeneral(ctx, session, text)
	}
}

// recordExchange appends the user and assistant turns with the configured
// history bound.
func (e *Engine) recordExchange(session *Session, userText, botText string) {
	session.AppendTurn(ChatRoleUser, userText, e.historyLimit)
	session.AppendTurn(ChatRoleAssistant, botText, e.historyLimit)
}

func (e *Engine) modelHistory(session *Session, text string) []ChatMessage {
	history := append([]ChatMessage(nil), session.History...)
	return append(history, ChatMessage{Role: ChatRoleUser, Content: text})
}

func (e *Engine) handleGeneral(ctx context.Context, session *Session, text string) (string, error) {
	reply, err := e.gateway.Complete(ctx, PromptSpec{
		Stage:  StageGeneral,
		System: []string{generalPrompt()},
	}, e.modelHistory(session, text))
	if err != nil {
		return "", err
	}

	if reply.SpecialAction != "" {
		response := e.handleSpecialAction(ctx, session, reply.SpecialAction)
		e.recordExchange(session, text, response)
		return response, nil
	}

	// A one-turn classification: the model may already have enough to route
	// straight to doctor selection.
	if response, ok := e.applyClassification(session, reply); ok {
		e.recordExchange(session, text, response)
		return response, nil
	}

	if reply.NextStage == StageClassifying {
		session.Stage = StageClassifying
	}
	e.recordExchange(session, text, reply.BotResponse)
	return reply.BotResponse, nil
}

func (e *Engine) handleSpecialAction(ctx context.Context, session *Session, action string) string {
	switch action {
	case "cancel":
		return "I'll help you cancel your appointment. Please provide your appointment details."
	case "modify":
		return "I'll help you modify your appointment. Please provide your current appointment details."
	case "show":
		return e.formatAppointmentHistory(ctx, session.ID)
	case "help":
		return helpText
	case "reset":
		session.Reset(StageClassifying)
		return "Let's start fresh. How can I help you today?"
	case "exit":
		return "Thank you for using our service. Goodbye!"
	default:
		return helpText
	}
}

// formatAppointmentHistory looks up appointments by the session ID, which
// commitBooking records as the patient ID. The patient number column holds the
// model-extracted phone and may be a placeholder.
func (e *Engine) formatAppointmentHistory(ctx context.Context, patientID string) string {
	appts, err := e.store.ListByPatientID(ctx, patientID)
	if err != nil {
		e.logger.Warn("failed to list appointments", "patient_id", patientID, "error", err.Error())
		return "I couldn't retrieve your appointments right now. Please try again later."
	}
	if len(appts) == 0 {
		return "You have no appointments on record."
	}
	var b strings.Builder
	b.WriteString("Here are your recent appointments:\n")
	for _, appt := range appts {
		fmt.Fprintf(&b, "- %s with %s on %s at %s (%s)\n",
			appt.AppointmentID, appt.DoctorName, appt.AppointmentDate, appt.AppointmentTime, appt.Status)
	}
	return strings.TrimRight(b.String(), "\n")
}

// applyClassification moves the session into doctor selection when the model
// produced a confident classification. Returns false when the reply does not
// settle the category, in which case the caller surfaces the model's own
// clarifying response.
func (e *Engine) applyClassification(session *Session, reply StructuredReply) (string, bool) {
	if reply.Category == "" || !e.catalog.HasCategory(reply.Category) {
		return "", false
	}
	if reply.NeedsMoreInfo == nil || *reply.NeedsMoreInfo {
		return "", false
	}

	if reply.WantsRecommendation != nil && !*reply.WantsRecommendation {
		session.Reset(StageGeneral)
		return farewellReply, true
	}
	if reply.WantsRecommendation != nil && *reply.WantsRecommendation {
		session.Category = reply.Category
		session.Stage = StageSelectingDoctor
		return e.rosterReply(reply.Category), true
	}

	// Unset means ask, never proceed.
	return fmt.Sprintf("I've classified your concern under %s. Would you like me to recommend a doctor for your %s concern?",
		reply.Category, reply.Category), true
}

func (e *Engine) handleClassifying(ctx context.Context, session *Session, text string) (string, error) {
	reply, err := e.gateway.Complete(ctx, PromptSpec{
		Stage:  StageClassifying,
		System: []string{classifyingPrompt(e.catalog.Categories())},
	}, e.modelHistory(session, text))
	if err != nil {
		return "", err
	}

	if response, ok := e.applyClassification(session, reply); ok {
		e.recordExchange(session, text, response)
		return response, nil
	}

	e.recordExchange(session, text, reply.BotResponse)
	return reply.BotResponse, nil
}

func (e *Engine) rosterReply(category string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Here are our %s specialists:\n", category)
	for i, doc := range e.catalog.Doctors(category) {
		fmt.Fprintf(&b, "%d. %s - %s (%d years experience)\n", i+1, doc.Name, doc.Qualification, doc.ExperienceYears)
	}
	b.WriteString("Please let me know which doctor you would like to consult.")
	return b.String()
}

func (e *Engine) datesReply(doctorName string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Great! Here are the available dates for %s:\n", doctorName)
	for _, date := range e.catalog.Dates(doctorName) {
		fmt.Fprintf(&b, "- %s\n", date)
	}
	b.WriteString("Please select a date.")
	return b.String()
}

func (e *Engine) slotsReply(doctorName, date string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "For %s, %s has the following available slots:\n", date, doctorName)
	for _, slot := range e.catalog.Slots(doctorName, date) {
		fmt.Fprintf(&b, "- %s\n", slot)
	}
	b.WriteString("Please select a time slot.")
	return b.String()
}

func (e *Engine) handleSelectingDoctor(ctx context.Context, session *Session, text string) (string, error) {
	roster := e.catalog.RosterNames(session.Category)

	// Local extraction wins over the model: a roster match selects the doctor
	// without consulting the model at all.
	if name := ExtractDoctorName(text, roster); name != "" {
		session.Doctor = name
		session.Stage = StageSelectingSlot
		response := e.datesReply(name)
		e.recordExchange(session, text, response)
		return response, nil
	}

	reply, err := e.gateway.Complete(ctx, PromptSpec{
		Stage:  StageSelectingDoctor,
		System: []string{doctorPrompt(session.Category, e.formatRoster(session.Category))},
	}, e.modelHistory(session, text))
	if err != nil {
		return "", err
	}

	// Model-proposed names are only accepted when they exist in the roster.
	if reply.Doctor != "" && containsName(roster, reply.Doctor) {
		session.Doctor = reply.Doctor
	}

	if session.Doctor != "" {
		if reply.WantsBooking != nil && *reply.WantsBooking {
			session.Stage = StageSelectingSlot
			response := e.datesReply(session.Doctor)
			e.recordExchange(session, text, response)
			return response, nil
		}
		if reply.WantsBooking != nil && !*reply.WantsBooking {
			doctor := session.Doctor
			session.Reset(StageGeneral)
			response := fmt.Sprintf("You've selected %s. If you change your mind about booking, just let me know.", doctor)
			e.recordExchange(session, text, response)
			return response, nil
		}
		response := fmt.Sprintf("You've selected %s. Would you like to book an appointment with this doctor?", session.Doctor)
		e.recordExchange(session, text, response)
		return response, nil
	}

	e.recordExchange(session, text, reply.BotResponse)
	return reply.BotResponse, nil
}

func (e *Engine) formatRoster(category string) string {
	var b strings.Builder
	for _, doc := range e.catalog.Doctors(category) {
		fmt.Fprintf(&b, "- %s, %s, %d years experience\n", doc.Name, doc.Qualification, doc.ExperienceYears)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (e *Engine) formatAvailability(doctorName string) string {
	var b strings.Builder
	for _, date := range e.catalog.Dates(doctorName) {
		fmt.Fprintf(&b, "%s: %s\n", date, strings.Join(e.catalog.Slots(doctorName, date), ", "))
	}
	return strings.TrimRight(b.String(), "\n")
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if strings.EqualFold(n, name) {
			return true
		}
	}
	return false
}

func (e *Engine) handleSelectingSlot(ctx context.Context, session *Session, text string) (string, error) {
	// Deterministic extraction first, validated against the catalog.
	if session.Date == "" {
		if date := ExtractDate(text); date != "" && len(e.catalog.Slots(session.Doctor, date)) > 0 {
			session.Date = date
		}
	}
	if session.Date != "" && session.TimeSlot == "" {
		if slot := ExtractTimeSlot(text, e.catalog.Slots(session.Doctor, session.Date)); slot != "" {
			session.TimeSlot = slot
		}
	}

	if session.Date != "" && session.TimeSlot != "" {
		response := e.commitBooking(ctx, session)
		e.recordExchange(session, text, response)
		return response, nil
	}

	reply, err := e.gateway.Complete(ctx, PromptSpec{
		Stage:  StageSelectingSlot,
		System: []string{slotPrompt(session.Doctor, e.formatAvailability(session.Doctor))},
	}, e.modelHistory(session, text))
	if err != nil {
		return "", err
	}

	// Model values only fill gaps the extractors left, and only when they
	// exist in the catalog.
	if session.Date == "" && reply.Date != "" && len(e.catalog.Slots(session.Doctor, reply.Date)) > 0 {
		session.Date = reply.Date
	}
	if session.Date != "" && session.TimeSlot == "" && reply.Slot != "" &&
		e.catalog.HasSlot(session.Doctor, session.Date, reply.Slot) {
		session.TimeSlot = reply.Slot
	}

	if session.Date != "" && session.TimeSlot != "" {
		response := e.commitBooking(ctx, session)
		e.recordExchange(session, text, response)
		return response, nil
	}

	if session.Date != "" {
		response := e.slotsReply(session.Doctor, session.Date)
		e.recordExchange(session, text, response)
		return response, nil
	}

	e.recordExchange(session, text, reply.BotResponse)
	return reply.BotResponse, nil
}

// commitBooking writes the appointment and resets the session. It runs at
// most once per booking flow: the session is reset before returning, so a
// replayed confirmation starts a fresh conversation instead of a duplicate
// commit.
func (e *Engine) commitBooking(ctx context.Context, session *Session) string {
	session.Stage = StageConfirming

	// Identity extraction failure does not block the commit; placeholders
	// stand in.
	info, err := e.gateway.ExtractPatientInfo(ctx, session.History)
	if err != nil {
		e.logger.Warn("patient info extraction failed, using placeholders",
			"session_id", session.ID,
			"error", err.Error(),
		)
	}

	doctor, _ := e.catalog.DoctorByName(session.Doctor)
	appt := appointments.Appointment{
		AppointmentID:   uuid.NewString(),
		PatientID:       session.ID,
		PatientName:     info.Name,
		PatientNumber:   info.Number,
		DoctorID:        doctor.ID,
		DoctorName:      session.Doctor,
		DoctorNumber:    doctor.Phone,
		AppointmentDate: session.Date,
		AppointmentTime: session.TimeSlot,
		Status:          appointments.StatusConfirmed,
		PatientConcern:  info.Concern,
		CreatedAt:       time.Now().UTC(),
	}

	doctorName, date, slot := session.Doctor, session.Date, session.TimeSlot
	if _, err := e.store.Append(ctx, appt); err != nil {
		e.metrics.ObserveBooking("storage_failure")
		e.logger.Error("appointment write failed",
			"session_id", session.ID,
			"appointment_id", appt.AppointmentID,
			"error", err.Error(),
		)
		session.Reset(StageGeneral)
		return fmt.Sprintf("Your appointment with %s on %s at %s has been confirmed, but there was an issue saving it to our system. Please make a note of these details.",
			doctorName, date, slot)
	}

	e.metrics.ObserveBooking("confirmed")
	e.logger.Info("appointment booked",
		"session_id", session.ID,
		"appointment_id", appt.AppointmentID,
		"doctor_id", doctor.ID,
		"date", date,
		"slot", slot,
	)
	session.Reset(StageGeneral)
	return fmt.Sprintf("Appointment confirmed with %s on %s at %s. We'll see you then!", doctorName, date, slot)
}
