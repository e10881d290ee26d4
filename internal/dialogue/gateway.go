package dialogue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/vedya-health/vedya-platform/internal/observability/metrics"
	"github.com/vedya-health/vedya-platform/pkg/logging"
)

// PromptSpec carries the stage-specific system prompt for one turn.
type PromptSpec struct {
	Stage  Stage
	System []string
}

// StructuredReply is the schema-validated output of one model turn. When
// Structured is false the model output failed validation and only BotResponse
// (the raw text) is meaningful.
type StructuredReply struct {
	BotResponse         string
	NextStage           Stage
	SpecialAction       string
	Category            string
	Doctor              string
	Date                string
	Slot                string
	WantsRecommendation *bool
	WantsBooking        *bool
	NeedsMoreInfo       *bool
	Structured          bool
}

// PatientInfo is the identity block extracted from conversation history at
// commit time. Missing fields carry placeholder defaults.
type PatientInfo struct {
	Name    string `json:"name"`
	Number  string `json:"number"`
	Concern string `json:"concern"`
}

const (
	defaultPatientName    = "Unknown"
	defaultPatientNumber  = "0000000000"
	defaultPatientConcern = "General checkup"
)

// Gateway is the engine's seam to the language model. Implementations own
// prompt assembly at the wire level, timeouts, and schema validation.
type Gateway interface {
	Complete(ctx context.Context, spec PromptSpec, history []ChatMessage) (StructuredReply, error)
	ExtractPatientInfo(ctx context.Context, history []ChatMessage) (PatientInfo, error)
}

// LLMGateway implements Gateway on top of an LLMClient. Model selection lives
// in the client, not here.
type LLMGateway struct {
	llm     LLMClient
	timeout time.Duration
	logger  *logging.Logger
	metrics *metrics.DialogueMetrics
	tracer  trace.Tracer
}

func NewLLMGateway(llm LLMClient, timeout time.Duration, logger *logging.Logger, m *metrics.DialogueMetrics) *LLMGateway {
	if llm == nil {
		panic("dialogue: llm client cannot be nil")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &LLMGateway{
		llm:     llm,
		timeout: timeout,
		logger:  logger,
		metrics: m,
		tracer:  otel.Tracer("vedya.internal.dialogue.gateway"),
	}
}

// wireReply mirrors the JSON contract the stage prompts describe. Pointer
// fields distinguish "absent" from "false"/"empty".
type wireReply struct {
	BotResponse         string  `json:"bot_response"`
	NextStage           *string `json:"next_stage"`
	SpecialAction       *string `json:"special_action"`
	Category            *string `json:"category"`
	Doctor              *string `json:"doctor"`
	Date                *string `json:"date"`
	Slot                *string `json:"slot"`
	WantsRecommendation *bool   `json:"wants_recommendation"`
	WantsBooking        *bool   `json:"wants_booking"`
	NeedsMoreInfo       *bool   `json:"needs_more_info"`
}

func (g *LLMGateway) Complete(ctx context.Context, spec PromptSpec, history []ChatMessage) (StructuredReply, error) {
	ctx, span := g.tracer.Start(ctx, "dialogue.gateway_complete")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	resp, err := g.llm.Complete(ctx, LLMRequest{
		System:      spec.System,
		Messages:    history,
		MaxTokens:   1024,
		Temperature: 0.3,
		TopP:        1.0,
	})
	g.metrics.ObserveLLMLatency(string(spec.Stage), time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, context.DeadlineExceeded) {
			return StructuredReply{}, fmt.Errorf("%w: %v", ErrModelTimeout, err)
		}
		return StructuredReply{}, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}

	reply, ok := parseStructuredReply(resp.Text)
	if !ok {
		// Malformed structured output degrades to freeform text.
		g.logger.Warn("model output failed schema validation, treating as freeform",
			"stage", string(spec.Stage),
		)
		return StructuredReply{BotResponse: resp.Text}, nil
	}
	return reply, nil
}

func (g *LLMGateway) ExtractPatientInfo(ctx context.Context, history []ChatMessage) (PatientInfo, error) {
	ctx, span := g.tracer.Start(ctx, "dialogue.extract_patient_info")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	info := PatientInfo{
		Name:    defaultPatientName,
		Number:  defaultPatientNumber,
		Concern: defaultPatientConcern,
	}

	resp, err := g.llm.Complete(ctx, LLMRequest{
		System:      []string{patientInfoPrompt()},
		Messages:    history,
		MaxTokens:   1024,
		Temperature: 0.3,
		TopP:        1.0,
	})
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, context.DeadlineExceeded) {
			return info, fmt.Errorf("%w: %v", ErrModelTimeout, err)
		}
		return info, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}

	var parsed PatientInfo
	if err := json.Unmarshal([]byte(extractJSONObject(resp.Text)), &parsed); err != nil {
		return info, nil
	}
	if strings.TrimSpace(parsed.Name) != "" {
		info.Name = strings.TrimSpace(parsed.Name)
	}
	if strings.TrimSpace(parsed.Number) != "" {
		info.Number = strings.TrimSpace(parsed.Number)
	}
	if strings.TrimSpace(parsed.Concern) != "" {
		info.Concern = strings.TrimSpace(parsed.Concern)
	}
	return info, nil
}

var validSpecialActions = map[string]bool{
	"cancel": true,
	"modify": true,
	"show":   true,
	"help":   true,
	"reset":  true,
	"exit":   true,
}

var validStages = map[Stage]bool{
	StageGeneral:         true,
	StageClassifying:     true,
	StageSelectingDoctor: true,
	StageSelectingSlot:   true,
	StageConfirming:      true,
}

// parseStructuredReply validates the model output against the reply schema.
// Any violation makes the whole reply unstructured; the engine then falls back
// to its own extractors and re-prompts.
func parseStructuredReply(raw string) (StructuredReply, bool) {
	var wire wireReply
	if err := json.Unmarshal([]byte(extractJSONObject(raw)), &wire); err != nil {
		return StructuredReply{}, false
	}
	if strings.TrimSpace(wire.BotResponse) == "" {
		return StructuredReply{}, false
	}

	reply := StructuredReply{
		BotResponse:         wire.BotResponse,
		WantsRecommendation: wire.WantsRecommendation,
		WantsBooking:        wire.WantsBooking,
		NeedsMoreInfo:       wire.NeedsMoreInfo,
		Structured:          true,
	}
	if wire.NextStage != nil && *wire.NextStage != "" {
		stage := Stage(strings.ToUpper(strings.TrimSpace(*wire.NextStage)))
		if !validStages[stage] {
			return StructuredReply{}, false
		}
		reply.NextStage = stage
	}
	if wire.SpecialAction != nil && *wire.SpecialAction != "" {
		action := strings.ToLower(strings.TrimSpace(*wire.SpecialAction))
		if !validSpecialActions[action] {
			return StructuredReply{}, false
		}
		reply.SpecialAction = action
	}
	if wire.Category != nil {
		reply.Category = strings.TrimSpace(*wire.Category)
	}
	if wire.Doctor != nil {
		reply.Doctor = strings.TrimSpace(*wire.Doctor)
	}
	if wire.Date != nil {
		reply.Date = strings.TrimSpace(*wire.Date)
	}
	if wire.Slot != nil {
		reply.Slot = strings.TrimSpace(*wire.Slot)
	}
	return reply, true
}

// extractJSONObject trims code fences and surrounding prose so a reply like
// "```json\n{...}\n```" still parses. Returns the input unchanged when no
// object braces are found.
func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return raw
	}
	return raw[start : end+1]
}
