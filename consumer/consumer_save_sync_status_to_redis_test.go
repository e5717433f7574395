package consumer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palikaops/survey-pipeline/processor"
)

func TestNewSaveSyncStatusToRedisConfig(t *testing.T) {
	_, err := NewSaveSyncStatusToRedis(map[string]interface{}{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing Redis address")
}

func TestSaveSyncStatusToRedisRejectsBadPayloads(t *testing.T) {
	// Payload validation happens before any Redis round trip, so a
	// clientless consumer is enough here.
	consumer := &SaveSyncStatusToRedis{keyPrefix: "survey_sync", ttl: time.Hour}
	ctx := context.Background()

	err := consumer.Process(ctx, processor.Message{Payload: "not bytes"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected []byte payload")

	err = consumer.Process(ctx, processor.Message{Payload: []byte("{not json")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error unmarshaling sync result")
}
