package topicstore

import (
	"time"

	"github.com/snarg/mqtt-inspect/internal/idgen"
	"github.com/snarg/mqtt-inspect/internal/mqttmsg"
)

// BufferedEntry is a Message retained by a TopicBuffer, tagged with the
// process-unique identifier it was ingested under and the instant it was
// received.
type BufferedEntry struct {
	ID         idgen.ID
	Topic      string
	Message    mqttmsg.Message
	ReceivedAt time.Time
}

// Size is the eviction-budget cost of this entry: payload bytes only.
func (e BufferedEntry) Size() int {
	return e.Message.Size()
}

// IngestItem is one unit of a batched ingest call: a fresh identifier paired
// with the topic and message it was assigned to.
type IngestItem struct {
	ID      idgen.ID
	Topic   string
	Message mqttmsg.Message
}

// TopicID names a buffered entry by its topic and identifier, the shape
// returned in the added/evicted lists of AddBatch.
type TopicID struct {
	ID    idgen.ID
	Topic string
}
