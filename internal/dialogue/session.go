package dialogue

import "time"

// Stage is the session's position in the booking flow.
type Stage string

const (
	StageGeneral         Stage = "GENERAL"
	StageClassifying     Stage = "CLASSIFYING"
	StageSelectingDoctor Stage = "SELECTING_DOCTOR"
	StageSelectingSlot   Stage = "SELECTING_SLOT"
	StageConfirming      Stage = "CONFIRMING"
)

// DefaultHistoryLimit bounds the number of turns kept for model context.
const DefaultHistoryLimit = 10

// Session is the per-user conversation state. One session per end-user
// identifier (WhatsApp number for webhook traffic). Sessions are mutated only
// by the engine, one turn at a time.
type Session struct {
	ID        string        `json:"sessionId"`
	Stage     Stage         `json:"stage"`
	Category  string        `json:"category,omitempty"`
	Doctor    string        `json:"doctor,omitempty"`
	Date      string        `json:"date,omitempty"`
	TimeSlot  string        `json:"timeSlot,omitempty"`
	History   []ChatMessage `json:"history,omitempty"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

func NewSession(id string) *Session {
	return &Session{
		ID:        id,
		Stage:     StageGeneral,
		UpdatedAt: time.Now().UTC(),
	}
}

// AppendTurn records one turn and trims history to the most recent limit
// entries. A limit of zero or less falls back to DefaultHistoryLimit.
func (s *Session) AppendTurn(role, text string, limit int) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	s.History = append(s.History, ChatMessage{Role: role, Content: text})
	if len(s.History) > limit {
		s.History = s.History[len(s.History)-limit:]
	}
	s.UpdatedAt = time.Now().UTC()
}

// Reset returns the session to the given stage with all booking facts
// cleared. History is kept so the model retains conversational context.
func (s *Session) Reset(stage Stage) {
	s.Stage = stage
	s.Category = ""
	s.Doctor = ""
	s.Date = ""
	s.TimeSlot = ""
	s.UpdatedAt = time.Now().UTC()
}
