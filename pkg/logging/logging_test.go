package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expofuse/expofuse/pkg/logging"
)

func TestContextRoundTrip(t *testing.T) {
	t.Run("FromContext falls back to default", func(t *testing.T) {
		assert.NotNil(t, logging.FromContext(context.Background()))
		assert.NotNil(t, logging.FromContext(nil)) //nolint:staticcheck
	})

	t.Run("WithLogger carries the logger", func(t *testing.T) {
		var buf bytes.Buffer
		logger := logging.New(&buf)
		ctx := logging.WithLogger(context.Background(), &logger)

		logging.FromContext(ctx).Info().Str("source", "OCR_QR").Msg("loaded")

		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "OCR_QR", entry["source"])
		assert.Equal(t, "loaded", entry["message"])
	})

	t.Run("nil logger falls back to default", func(t *testing.T) {
		ctx := logging.WithLogger(context.Background(), nil)
		assert.Equal(t, logging.Default(), logging.FromContext(ctx))
	})

	t.Run("Ctx is FromContext", func(t *testing.T) {
		ctx := context.Background()
		assert.Equal(t, logging.FromContext(ctx), logging.Ctx(ctx))
	})
}

func TestPackageLevelEvents(t *testing.T) {
	assert.NotNil(t, logging.Debug())
	assert.NotNil(t, logging.Info())
	assert.NotNil(t, logging.Warn())
	assert.NotNil(t, logging.Error())
	assert.NotNil(t, logging.Err(assert.AnError))
}

func TestNewWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(&buf)
	logger.Info().Int("rows", 12).Msg("fused")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, float64(12), entry["rows"])
}
