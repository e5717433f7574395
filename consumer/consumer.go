package consumer

import (
	"context"

	"github.com/palikaops/survey-pipeline/processor"
)

// Consumer defines the interface for terminal pipeline stages.
type Consumer interface {
	Process(context.Context, processor.Message) error
	Subscribe(processor.Processor)
}

type ConsumerConfig struct {
	Type   string                 `yaml:"type"`
	Config map[string]interface{} `yaml:"config"`
}
