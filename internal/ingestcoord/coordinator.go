// Package ingestcoord wires one inbound MQTT message through identifier
// assignment, retention storage, tree aggregation, and correlation
// matching. It holds no state of its own — pure dispatch.
package ingestcoord

import (
	"time"

	"github.com/snarg/mqtt-inspect/internal/idgen"
	"github.com/snarg/mqtt-inspect/internal/mqttmsg"
	"github.com/snarg/mqtt-inspect/internal/topicstore"
)

// TopicStore is the subset of topicstore.Store the coordinator depends on.
type TopicStore interface {
	AddBatch(items []topicstore.IngestItem) (added, evicted []topicstore.TopicID)
}

// TopicTree is the subset of topictree.Tree the coordinator depends on.
type TopicTree interface {
	Observe(topic string)
}

// CorrelationTracker is the subset of correlation.Tracker the coordinator
// depends on.
type CorrelationTracker interface {
	RegisterRequest(requestID idgen.ID, correlationData []byte, responseTopic string, ttl time.Duration) bool
	LinkResponse(responseID idgen.ID, correlationData []byte, actualTopic string) bool
}

// Coordinator dispatches each inbound message to its three collaborators.
// It is safe for concurrent use: every method it calls on its
// collaborators is itself safe for concurrent use, and Coordinator adds no
// shared state of its own.
type Coordinator struct {
	ids         idgen.Source
	store       TopicStore
	tree        TopicTree
	correlation CorrelationTracker
	ttl         time.Duration
}

// Options configures a new Coordinator.
type Options struct {
	IDs            idgen.Source
	Store          TopicStore
	Tree           TopicTree
	Correlation    CorrelationTracker
	CorrelationTTL time.Duration
}

// New builds a Coordinator from its collaborators.
func New(opts Options) *Coordinator {
	ids := opts.IDs
	if ids == nil {
		ids = idgen.UUIDSource{}
	}
	return &Coordinator{
		ids:         ids,
		store:       opts.Store,
		tree:        opts.Tree,
		correlation: opts.Correlation,
		ttl:         opts.CorrelationTTL,
	}
}

// Ingest handles one inbound message: assigns it a fresh identifier, stores
// it, updates the topic tree, and best-effort registers or links it with
// the correlation tracker. Correlation failures are ignored by design —
// ingest never fails because correlation bookkeeping did.
func (c *Coordinator) Ingest(topic string, msg mqttmsg.Message) idgen.ID {
	id := c.ids.NewID()

	c.store.AddBatch([]topicstore.IngestItem{{ID: id, Topic: topic, Message: msg}})
	c.tree.Observe(topic)

	switch {
	case msg.ResponseTopic != "" && len(msg.CorrelationData) > 0:
		c.correlation.RegisterRequest(id, msg.CorrelationData, msg.ResponseTopic, c.ttl)
	case len(msg.CorrelationData) > 0:
		c.correlation.LinkResponse(id, msg.CorrelationData, topic)
	}

	return id
}

// IngestBatch ingests several messages in one call, amortizing the
// TopicStore lock across the whole batch.
func (c *Coordinator) IngestBatch(items []struct {
	Topic   string
	Message mqttmsg.Message
}) []idgen.ID {
	ids := make([]idgen.ID, len(items))
	batch := make([]topicstore.IngestItem, len(items))
	for i, item := range items {
		id := c.ids.NewID()
		ids[i] = id
		batch[i] = topicstore.IngestItem{ID: id, Topic: item.Topic, Message: item.Message}
	}

	c.store.AddBatch(batch)
	for _, item := range items {
		c.tree.Observe(item.Topic)
	}
	for i, item := range items {
		msg := item.Message
		switch {
		case msg.ResponseTopic != "" && len(msg.CorrelationData) > 0:
			c.correlation.RegisterRequest(ids[i], msg.CorrelationData, msg.ResponseTopic, c.ttl)
		case len(msg.CorrelationData) > 0:
			c.correlation.LinkResponse(ids[i], msg.CorrelationData, item.Topic)
		}
	}
	return ids
}
