package mq

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueueArgsDeadLetter(t *testing.T) {
	cfg := ConsumerConfig{Queue: "storefront.activity.q", DLX: "storefront.activity.dlx", DLQ: "storefront.activity.q.dlq"}
	assert.Equal(t, "storefront.activity.dlx", cfg.queueArgs()["x-dead-letter-exchange"])

	cfg.DLX = ""
	assert.Empty(t, cfg.queueArgs())
}
