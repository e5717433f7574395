package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Processor defines the interface for processing messages.
type Processor interface {
	Process(context.Context, Message) error
	Subscribe(Processor)
}

type ProcessorConfig struct {
	Type   string                 `yaml:"type"`
	Config map[string]interface{} `yaml:"config"`
}

// Message encapsulates the payload to be processed with optional metadata.
type Message struct {
	Payload  interface{}            `json:"payload"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// Survey kinds as declared by the collection platform's form registry.
const (
	SurveyKindHousehold = "household"
	SurveyKindBusiness  = "business"
	SurveyKindBuilding  = "building"
)

// SubmissionMetadata describes where a raw submission payload came from.
type SubmissionMetadata struct {
	SurveyKind   string    `json:"survey_kind"`
	FormID       string    `json:"form_id"`
	SubmissionID string    `json:"submission_id"`
	FetchedAt    time.Time `json:"fetched_at"`
}

// GetSubmissionMetadata extracts submission metadata from the message.
func (m *Message) GetSubmissionMetadata() (*SubmissionMetadata, bool) {
	if m.Metadata == nil {
		return nil, false
	}

	raw, exists := m.Metadata["submission_source"]
	if !exists {
		return nil, false
	}

	if meta, ok := raw.(*SubmissionMetadata); ok {
		return meta, true
	}

	return nil, false
}

// ForwardToProcessors marshals the payload and forwards it to all downstream processors
func ForwardToProcessors(ctx context.Context, payload interface{}, processors []Processor) error {
	jsonBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("error marshaling payload: %w", err)
	}

	for _, processor := range processors {
		if err := processor.Process(ctx, Message{Payload: jsonBytes}); err != nil {
			return fmt.Errorf("error in processor chain: %w", err)
		}
	}

	return nil
}

// ExtractRawSubmission extracts the raw submission JSON bytes from a message.
func ExtractRawSubmission(msg Message) ([]byte, error) {
	raw, ok := msg.Payload.([]byte)
	if !ok {
		return nil, fmt.Errorf("expected raw submission []byte, got %T", msg.Payload)
	}
	return raw, nil
}
