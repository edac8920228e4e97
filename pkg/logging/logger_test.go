package logging

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromContext_CarriesRequestID(t *testing.T) {
	var buf bytes.Buffer
	Setup(Config{Level: "debug", Output: &buf})

	ctx := WithRequestID(context.Background(), "orders/0/42")
	logger := FromContext(ctx)
	logger.Info().Msg("applied")

	assert.Contains(t, buf.String(), `"request_id":"orders/0/42"`)
	assert.Contains(t, buf.String(), "applied")
}

func TestFromContext_NoRequestID(t *testing.T) {
	var buf bytes.Buffer
	Setup(Config{Level: "debug", Output: &buf})

	logger := FromContext(context.Background())
	logger.Info().Msg("plain")

	assert.Contains(t, buf.String(), "plain")
	assert.NotContains(t, buf.String(), "request_id")
}
