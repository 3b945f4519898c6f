// Package correlation implements the MQTT v5 request/response correlation
// tracker: it indexes request messages by their correlation-data bytes,
// links later responses that match, ages entries out by TTL, and reports
// StatusChanged events across the Pending/Received/Hidden lifecycle.
package correlation

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/snarg/mqtt-inspect/internal/idgen"
)

// DefaultTTL is used when RegisterRequest is called with ttl <= 0.
const DefaultTTL = 30 * time.Minute

// Tracker indexes in-flight request/response pairs by correlation-data. Its
// two logical maps (correlation-data -> entry, request-id -> correlation-data)
// are kept mutually consistent; the tracker-wide lock covers only map
// insert/delete, and the per-entry mutex guards entry mutation.
type Tracker struct {
	mu            sync.RWMutex // guards the two maps themselves (insert/delete), not entry contents
	byCorrelation map[string]*entry
	byRequest     map[idgen.ID]string

	clock  idgen.Clock
	events *EventBus
	log    zerolog.Logger
}

// Options configures a new Tracker.
type Options struct {
	Clock idgen.Clock
	Log   zerolog.Logger
}

// New creates an empty Tracker.
func New(opts Options) *Tracker {
	clock := opts.Clock
	if clock == nil {
		clock = idgen.SystemClock{}
	}
	return &Tracker{
		byCorrelation: make(map[string]*entry),
		byRequest:     make(map[idgen.ID]string),
		clock:         clock,
		events:        NewEventBus(),
		log:           opts.Log,
	}
}

// Events returns the tracker's StatusChanged event bus for subscription.
func (t *Tracker) Events() *EventBus {
	return t.events
}

// RegisterRequest begins tracking a request message. It fails if either
// argument is empty/invalid, or if an entry already exists for this
// correlation-data — reported back as false and logged as a warning,
// never an error.
func (t *Tracker) RegisterRequest(requestID idgen.ID, correlationData []byte, responseTopic string, ttl time.Duration) bool {
	if requestID.IsZero() || len(correlationData) == 0 || responseTopic == "" {
		return false
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	key := string(correlationData)
	now := t.clock.Now()

	t.mu.Lock()
	if _, exists := t.byCorrelation[key]; exists {
		t.mu.Unlock()
		t.log.Warn().Str("request_id", requestID.String()).Msg("correlation: duplicate correlation-data on register, skipping")
		return false
	}
	e := &entry{
		correlationData: append([]byte(nil), correlationData...),
		requestID:       requestID,
		responseTopic:   responseTopic,
		createdAt:       now,
		ttl:             ttl,
		expiresAt:       now.Add(ttl),
		status:          Pending,
	}
	t.byCorrelation[key] = e
	t.byRequest[requestID] = key
	t.mu.Unlock()

	t.events.Publish(StatusChangedEvent{RequestID: requestID, From: Hidden, To: Pending, At: now})
	return true
}

// LinkResponse attaches a response message to the request matching its
// correlation-data, if the response arrived on the expected response topic.
// Responses arriving before their request are not retroactively paired —
// the link fails and the message stays inspectable in the topic store.
func (t *Tracker) LinkResponse(responseID idgen.ID, correlationData []byte, actualTopic string) bool {
	if len(correlationData) == 0 {
		return false
	}
	key := string(correlationData)

	t.mu.RLock()
	e, ok := t.byCorrelation[key]
	t.mu.RUnlock()
	if !ok {
		return false
	}

	e.mu.Lock()
	if actualTopic != e.responseTopic {
		e.mu.Unlock()
		return false
	}
	e.responses = append(e.responses, responseID)
	wasPending := e.status == Pending
	if wasPending {
		e.status = Received
	}
	requestID := e.requestID
	e.mu.Unlock()

	if wasPending {
		t.events.Publish(StatusChangedEvent{RequestID: requestID, From: Pending, To: Received, At: t.clock.Now()})
	}
	return true
}

// StatusOf reports the current lifecycle status of a request, refreshed
// against wall-clock time: a Pending or Received entry past its expiry
// reports Hidden even before SweepExpired has run.
func (t *Tracker) StatusOf(requestID idgen.ID) Status {
	t.mu.RLock()
	key, ok := t.byRequest[requestID]
	if !ok {
		t.mu.RUnlock()
		return Hidden
	}
	e := t.byCorrelation[key]
	t.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.expired(t.clock.Now()) {
		return Hidden
	}
	return e.status
}

// ResponsesOf returns the response ids linked to a request, in link order.
func (t *Tracker) ResponsesOf(requestID idgen.ID) []idgen.ID {
	t.mu.RLock()
	key, ok := t.byRequest[requestID]
	if !ok {
		t.mu.RUnlock()
		return nil
	}
	e := t.byCorrelation[key]
	t.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]idgen.ID, len(e.responses))
	copy(out, e.responses)
	return out
}

// ResponseTopicOf returns the expected response topic for a request.
func (t *Tracker) ResponseTopicOf(requestID idgen.ID) (string, bool) {
	t.mu.RLock()
	key, ok := t.byRequest[requestID]
	if !ok {
		t.mu.RUnlock()
		return "", false
	}
	e := t.byCorrelation[key]
	t.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.responseTopic, true
}

// SweepExpired removes every entry whose expiry has passed, emitting a
// StatusChanged(requestID, current -> Hidden) for each. It is idempotent
// and cancel-safe: a sweep that finds nothing to remove is a no-op.
func (t *Tracker) SweepExpired() int {
	now := t.clock.Now()

	t.mu.Lock()
	var toRemove []struct {
		key       string
		requestID idgen.ID
		from      Status
	}
	for key, e := range t.byCorrelation {
		e.mu.Lock()
		if e.expired(now) {
			toRemove = append(toRemove, struct {
				key       string
				requestID idgen.ID
				from      Status
			}{key, e.requestID, e.status})
		}
		e.mu.Unlock()
	}
	for _, r := range toRemove {
		delete(t.byCorrelation, r.key)
		delete(t.byRequest, r.requestID)
	}
	t.mu.Unlock()

	for _, r := range toRemove {
		t.events.Publish(StatusChangedEvent{RequestID: r.requestID, From: r.from, To: Hidden, At: now})
	}
	return len(toRemove)
}
