package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"umspanel/internal/queue"
)

func TestAuditPublisherNeedsConsumer(t *testing.T) {
	assert.Nil(t, auditPublisher(queue.NewInMemory(1), false))
	assert.NotNil(t, auditPublisher(queue.NewInMemory(1), true))

	// cmd/worker drains the redis queue, so the panel store does not matter.
	assert.NotNil(t, auditPublisher(queue.NewRedisQueue(nil, "ums:audit"), false))
}
