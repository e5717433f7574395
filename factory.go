package main

import (
	"fmt"

	"github.com/palikaops/survey-pipeline/consumer"
	"github.com/palikaops/survey-pipeline/processor"
)

func createSourceAdapter(sourceConfig SourceConfig) (SourceAdapter, error) {
	switch sourceConfig.Type {
	case "SurveyAPISourceAdapter":
		return NewSurveyAPISourceAdapter(sourceConfig.Config)
	case "FSSurveySourceAdapter":
		return NewFSSurveySourceAdapter(sourceConfig.Config)
	default:
		return nil, fmt.Errorf("unsupported source type: %s", sourceConfig.Type)
	}
}

func createProcessor(processorConfig processor.ProcessorConfig) (processor.Processor, error) {
	switch processorConfig.Type {
	case "ParseHousehold":
		return processor.NewParseHousehold(processorConfig.Config)
	case "ParseBusiness":
		return processor.NewParseBusiness(processorConfig.Config)
	case "ParseBuilding":
		return processor.NewParseBuilding(processorConfig.Config)
	default:
		return nil, fmt.Errorf("unsupported processor type: %s", processorConfig.Type)
	}
}

func createConsumer(consumerConfig consumer.ConsumerConfig) (processor.Processor, error) {
	switch consumerConfig.Type {
	case "SaveStagingToPostgreSQL":
		return consumer.NewSaveStagingToPostgreSQL(consumerConfig.Config)
	case "PromoteToProduction":
		return consumer.NewPromoteToProduction(consumerConfig.Config)
	case "SaveSyncStatusToRedis":
		return consumer.NewSaveSyncStatusToRedis(consumerConfig.Config)
	default:
		return nil, fmt.Errorf("unsupported consumer type: %s", consumerConfig.Type)
	}
}
