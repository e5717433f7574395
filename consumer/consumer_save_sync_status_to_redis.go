package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/palikaops/survey-pipeline/processor"
)

// SaveSyncStatusToRedis keeps the dashboard's per-run sync counters:
// promoted / skipped / failed totals and invalid-reference counts per
// validity flag, plus the latest result per submission.
type SaveSyncStatusToRedis struct {
	client     *redis.Client
	processors []processor.Processor
	keyPrefix  string
	ttl        time.Duration
}

func NewSaveSyncStatusToRedis(config map[string]interface{}) (*SaveSyncStatusToRedis, error) {
	addr, ok := config["address"].(string)
	if !ok {
		return nil, fmt.Errorf("missing Redis address")
	}

	password, _ := config["password"].(string)

	db := 0
	if v, ok := config["db"].(int); ok {
		db = v
	}

	keyPrefix := "survey_sync"
	if v, ok := config["key_prefix"].(string); ok {
		keyPrefix = v
	}

	ttlHours := 72
	if v, ok := config["ttl_hours"].(int); ok {
		ttlHours = v
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %v", err)
	}

	return &SaveSyncStatusToRedis{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       time.Duration(ttlHours) * time.Hour,
	}, nil
}

func (s *SaveSyncStatusToRedis) Subscribe(proc processor.Processor) {
	s.processors = append(s.processors, proc)
}

func (s *SaveSyncStatusToRedis) Process(ctx context.Context, msg processor.Message) error {
	payload, ok := msg.Payload.([]byte)
	if !ok {
		return fmt.Errorf("expected []byte payload, got %T", msg.Payload)
	}

	var result processor.SyncResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return fmt.Errorf("error unmarshaling sync result: %w", err)
	}

	countersKey := fmt.Sprintf("%s:counters:%s", s.keyPrefix, result.SurveyKind)
	recordKey := fmt.Sprintf("%s:result:%s", s.keyPrefix, result.SubmissionID)

	pipe := s.client.Pipeline()
	pipe.HIncrBy(ctx, countersKey, result.Outcome, 1)
	if result.Outcome == processor.OutcomePromoted {
		for flag, valid := range map[string]bool{
			"invalid_ward":           !result.WardValid,
			"invalid_area":           !result.AreaValid,
			"invalid_enumerator":     !result.EnumeratorValid,
			"invalid_building_token": !result.TokenValid,
		} {
			if valid {
				pipe.HIncrBy(ctx, countersKey, flag, 1)
			}
		}
	}
	pipe.Expire(ctx, countersKey, s.ttl)
	pipe.Set(ctx, recordKey, payload, s.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("error writing sync status to Redis: %w", err)
	}

	return processor.ForwardToProcessors(ctx, &result, s.processors)
}

func (s *SaveSyncStatusToRedis) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
