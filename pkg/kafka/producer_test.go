package kafka

import (
	"testing"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetWriterConfiguresTopicAndClientID(t *testing.T) {
	config := DefaultConfig()
	config.ClientID = "dispatch-api-test"
	producer := NewProducer(config, nil)

	writer := producer.getWriter("dispatch.order.events")

	assert.Equal(t, "dispatch.order.events", writer.Topic)
	transport, ok := writer.Transport.(*kafkago.Transport)
	require.True(t, ok)
	assert.Equal(t, "dispatch-api-test", transport.ClientID)
}

func TestGetWriterReusesWriterPerTopic(t *testing.T) {
	producer := NewProducer(DefaultConfig(), nil)

	first := producer.getWriter("dispatch.order.events")
	second := producer.getWriter("dispatch.order.events")

	assert.Same(t, first, second)
}
