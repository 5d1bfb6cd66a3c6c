package mqtt

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/equitrack/equitrack/internal/conf"
	"github.com/equitrack/equitrack/internal/errors"
	"github.com/equitrack/equitrack/internal/logger"
)

func TestNewClientRequiresBroker(t *testing.T) {
	t.Parallel()

	_, err := NewClient(conf.MQTTSettings{}, logger.Silent())
	require.Error(t, err)

	var enhanced *errors.EnhancedError
	require.ErrorAs(t, err, &enhanced)
	assert.Equal(t, errors.CategoryConfiguration, enhanced.GetCategory())
}

func TestPublishWhileDisconnected(t *testing.T) {
	t.Parallel()

	client, err := NewClient(conf.MQTTSettings{Broker: "tcp://localhost:1883"}, logger.Silent())
	require.NoError(t, err)

	err = client.Publish(context.Background(), "equitrack/sos", "payload")
	require.Error(t, err)
	assert.False(t, client.IsConnected())
}
