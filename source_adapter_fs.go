package main

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"

	"github.com/palikaops/survey-pipeline/processor"
)

// FSSurveySourceAdapter replays exported submission JSON files from a local
// directory, one file per submission. Used for backfills and testing without
// the collection platform.
type FSSurveySourceAdapter struct {
	directory  string
	surveyKind string
	processors []processor.Processor
}

func NewFSSurveySourceAdapter(config map[string]interface{}) (SourceAdapter, error) {
	directory, ok := config["directory"].(string)
	if !ok {
		return nil, errors.New("directory must be specified")
	}
	surveyKind, ok := config["survey_kind"].(string)
	if !ok {
		return nil, errors.New("survey_kind must be specified")
	}

	return &FSSurveySourceAdapter{
		directory:  directory,
		surveyKind: surveyKind,
	}, nil
}

func (f *FSSurveySourceAdapter) Subscribe(receiver processor.Processor) {
	f.processors = append(f.processors, receiver)
}

func (f *FSSurveySourceAdapter) Run(ctx context.Context) error {
	entries, err := os.ReadDir(f.directory)
	if err != nil {
		return errors.Wrapf(err, "error reading directory %s", f.directory)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".json") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	processed := 0
	for _, name := range files {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		raw, err := os.ReadFile(filepath.Join(f.directory, name))
		if err != nil {
			log.Printf("error reading submission file %s: %v", name, err)
			continue
		}

		msg := processor.Message{
			Payload: raw,
			Metadata: map[string]interface{}{
				"submission_source": &processor.SubmissionMetadata{
					SurveyKind:   f.surveyKind,
					FormID:       "fs:" + f.directory,
					SubmissionID: gjson.GetBytes(raw, "_id").String(),
					FetchedAt:    time.Now().UTC(),
				},
			},
		}

		failed := false
		for _, proc := range f.processors {
			if err := proc.Process(ctx, msg); err != nil {
				log.Printf("error processing submission file %s: %v", name, err)
				failed = true
				break
			}
		}
		if !failed {
			processed++
		}
	}

	log.Printf("replayed %d/%d submission files from %s", processed, len(files), f.directory)
	return nil
}
