package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"gopkg.in/yaml.v2"

	"github.com/palikaops/survey-pipeline/consumer"
	"github.com/palikaops/survey-pipeline/processor"
)

type Config struct {
	Pipelines map[string]PipelineConfig `yaml:"pipelines"`
}

type PipelineConfig struct {
	Name       string                      `yaml:"name"`
	Source     SourceConfig                `yaml:"source"`
	Processors []processor.ProcessorConfig `yaml:"processors"`
	Consumers  []consumer.ConsumerConfig   `yaml:"consumers"`
}

type SourceConfig struct {
	Type   string                 `yaml:"type"`
	Config map[string]interface{} `yaml:"config"`
}

func main() {
	configFile := flag.String("config", "pipeline_config.yaml", "Path to pipeline configuration file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
	defer stop()

	configBytes, err := os.ReadFile(*configFile)
	if err != nil {
		log.Fatalf("Error reading config file %s: %v", *configFile, err)
	}

	var config Config
	if err := yaml.Unmarshal(configBytes, &config); err != nil {
		log.Fatalf("Error parsing config: %v", err)
	}

	for name, pipelineConfig := range config.Pipelines {
		log.Printf("Starting pipeline: %s", name)
		if err := setupPipeline(ctx, pipelineConfig); err != nil {
			log.Printf("Pipeline error: error in pipeline %s: %v", name, err)
		}
	}

	log.Printf("All pipelines finished.")
}

// buildProcessorChain chains processors sequentially and then chains consumers off the last processor
func buildProcessorChain(processors []processor.Processor, consumers []processor.Processor) {
	var lastProcessor processor.Processor

	for _, p := range processors {
		if lastProcessor != nil {
			lastProcessor.Subscribe(p)
			log.Printf("Chained processor %T -> %T", lastProcessor, p)
		}
		lastProcessor = p
	}

	// Consumers are chained sequentially, not fanned out: staging must
	// commit before promotion sees the record set, and promotion's sync
	// result feeds the status consumer.
	if lastProcessor != nil && len(consumers) > 0 {
		lastProcessor.Subscribe(consumers[0])
		log.Printf("Chained processor %T -> consumer %T", lastProcessor, consumers[0])
	}
	for i := 1; i < len(consumers); i++ {
		consumers[i-1].Subscribe(consumers[i])
		log.Printf("Chained consumer %T -> consumer %T", consumers[i-1], consumers[i])
	}
}

func setupPipeline(ctx context.Context, pipelineConfig PipelineConfig) error {
	source, err := createSourceAdapter(pipelineConfig.Source)
	if err != nil {
		return fmt.Errorf("error creating source: %w", err)
	}

	processors := make([]processor.Processor, len(pipelineConfig.Processors))
	for i, procConfig := range pipelineConfig.Processors {
		proc, err := createProcessor(procConfig)
		if err != nil {
			return fmt.Errorf("error creating processor %s: %w", procConfig.Type, err)
		}
		processors[i] = proc
	}

	consumers := make([]processor.Processor, len(pipelineConfig.Consumers))
	for i, consConfig := range pipelineConfig.Consumers {
		cons, err := createConsumer(consConfig)
		if err != nil {
			return fmt.Errorf("error creating consumer %s: %w", consConfig.Type, err)
		}
		consumers[i] = cons
	}

	buildProcessorChain(processors, consumers)

	if len(processors) > 0 {
		source.Subscribe(processors[0])
	} else if len(consumers) > 0 {
		source.Subscribe(consumers[0])
	}

	return source.Run(ctx)
}
