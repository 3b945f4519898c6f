// Package topicstore implements the per-topic, byte-budgeted retention
// buffer: a bounded FIFO per topic that evicts the oldest entries to
// respect a configurable budget, with an oversize-proxy substitution path
// for single messages that could never fit.
package topicstore

import (
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/snarg/mqtt-inspect/internal/idgen"
	"github.com/snarg/mqtt-inspect/internal/mqttmsg"
)

// Store is the sole owner of every BufferedEntry it holds. Callers receive
// snapshots; nothing returned by Store is safe to mutate.
type Store struct {
	mu            sync.Mutex
	buffers       map[string]*topicBuffer
	reverse       map[idgen.ID]string
	seen          map[idgen.ID]struct{}
	defaultBudget int
	overrides     map[string]int
	clock         idgen.Clock
	ids           idgen.Source
	log           zerolog.Logger
}

// Options configures a new Store.
type Options struct {
	DefaultBudget int
	Overrides     map[string]int // exact topic filter -> max bytes
	Clock         idgen.Clock
	IDs           idgen.Source // used only to mint fresh ids for oversize-proxy substitutes
	Log           zerolog.Logger
}

// New creates an empty Store with the given default per-topic budget and
// any exact-match overrides.
func New(opts Options) *Store {
	overrides := make(map[string]int, len(opts.Overrides))
	for topic, budget := range opts.Overrides {
		overrides[normalizeTopic(topic)] = budget
	}
	clock := opts.Clock
	if clock == nil {
		clock = idgen.SystemClock{}
	}
	ids := opts.IDs
	if ids == nil {
		ids = idgen.UUIDSource{}
	}
	return &Store{
		buffers:       make(map[string]*topicBuffer),
		reverse:       make(map[idgen.ID]string),
		seen:          make(map[idgen.ID]struct{}),
		defaultBudget: opts.DefaultBudget,
		overrides:     overrides,
		clock:         clock,
		ids:           ids,
		log:           opts.Log,
	}
}

// normalizeTopic trims a single trailing slash. Empty topics are invalid
// and handled by the caller.
func normalizeTopic(topic string) string {
	return strings.TrimSuffix(topic, "/")
}

func (s *Store) budgetFor(topic string) int {
	if b, ok := s.overrides[topic]; ok {
		return b
	}
	return s.defaultBudget
}

// AddBatch ingests a batch of items, grouped internally by topic and
// processed in the order given within each topic group. It returns the
// identifiers that were retained (including any oversize-proxy
// substitutes) and those evicted to make room.
func (s *Store) AddBatch(items []IngestItem) (added, evicted []TopicID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range items {
		topic := normalizeTopic(item.Topic)
		if topic == "" {
			s.log.Warn().Str("raw_topic", item.Topic).Msg("topicstore: rejecting empty topic")
			continue
		}
		if _, dup := s.seen[item.ID]; dup {
			s.log.Warn().Str("id", item.ID.String()).Msg("topicstore: duplicate id, skipping")
			continue
		}

		buf, ok := s.buffers[topic]
		if !ok {
			buf = newTopicBuffer(s.budgetFor(topic))
			s.buffers[topic] = buf
		}

		size := item.Message.Size()
		for !buf.fits(size) && len(buf.entries) > 0 {
			old := buf.evictOldest()
			delete(s.reverse, old.ID)
			evicted = append(evicted, TopicID{ID: old.ID, Topic: topic})
		}

		if buf.fits(size) {
			entry := BufferedEntry{ID: item.ID, Topic: topic, Message: item.Message, ReceivedAt: s.clock.Now()}
			buf.append(entry)
			s.reverse[item.ID] = topic
			s.seen[item.ID] = struct{}{}
			added = append(added, TopicID{ID: item.ID, Topic: topic})
			continue
		}

		// Buffer is now empty and the message still doesn't fit: substitute
		// a proxy entry, itself subject to the same budget.
		now := s.clock.Now()
		proxyMsg := buildProxy(item.Message, now)
		if len(proxyMsg.Payload) > buf.budget {
			s.log.Warn().Str("topic", topic).Int("size", size).Msg("topicstore: message too large even for proxy, dropping")
			continue
		}
		proxyID := s.ids.NewID()
		entry := BufferedEntry{ID: proxyID, Topic: topic, Message: proxyMsg, ReceivedAt: now}
		buf.append(entry)
		s.reverse[proxyID] = topic
		s.seen[proxyID] = struct{}{}
		added = append(added, TopicID{ID: proxyID, Topic: topic})
	}

	return added, evicted
}

// MessagesFor returns a snapshot of topic's buffer in strict insertion
// order. Unknown topics return an empty, non-nil slice.
func (s *Store) MessagesFor(topic string) []BufferedEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	buf, ok := s.buffers[normalizeTopic(topic)]
	if !ok {
		return []BufferedEntry{}
	}
	return buf.snapshot()
}

// Lookup finds the topic and message for a previously ingested identifier.
func (s *Store) Lookup(id idgen.ID) (topic string, msg mqttmsg.Message, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	topic, ok = s.reverse[id]
	if !ok {
		return "", mqttmsg.Message{}, false
	}
	buf := s.buffers[topic]
	idx := buf.indexOf(id)
	if idx < 0 {
		return "", mqttmsg.Message{}, false
	}
	return topic, buf.entries[idx].Message, true
}

// Topics returns every topic currently holding at least one entry.
func (s *Store) Topics() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0, len(s.buffers))
	for topic, buf := range s.buffers {
		if len(buf.entries) > 0 {
			out = append(out, topic)
		}
	}
	return out
}

// ClearAll empties every buffer and the reverse index atomically. Eviction
// events are not reported for a clear.
func (s *Store) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.buffers = make(map[string]*topicBuffer)
	s.reverse = make(map[idgen.ID]string)
}
