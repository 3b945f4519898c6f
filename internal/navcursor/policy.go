package navcursor

import (
	"github.com/snarg/mqtt-inspect/internal/correlation"
	"github.com/snarg/mqtt-inspect/internal/idgen"
)

// SubscriptionOracle reports whether the running session currently holds an
// active subscription to a topic. Implemented by the MQTT client layer;
// injected here so this package stays free of transport concerns.
type SubscriptionOracle interface {
	IsSubscribed(topic string) bool
}

// StatusSource is the subset of correlation.Tracker that NavigationPolicy
// depends on.
type StatusSource interface {
	StatusOf(requestID idgen.ID) correlation.Status
	ResponseTopicOf(requestID idgen.ID) (string, bool)
}

// Policy decides the UI-visible navigation status for a correlated
// request, folding in whether its response topic is currently subscribed.
type Policy struct {
	tracker      StatusSource
	subscription SubscriptionOracle
}

// NewPolicy builds a Policy over a tracker and subscription oracle.
func NewPolicy(tracker StatusSource, subscription SubscriptionOracle) *Policy {
	return &Policy{tracker: tracker, subscription: subscription}
}

// StatusFor reports the navigation status of requestID: Hidden if the
// tracker has no entry, NavigationDisabled if the response topic isn't
// currently subscribed (this overrides Received), else the tracker's own
// status.
func (p *Policy) StatusFor(requestID idgen.ID) correlation.Status {
	status := p.tracker.StatusOf(requestID)
	if status == correlation.Hidden {
		return correlation.Hidden
	}
	topic, ok := p.tracker.ResponseTopicOf(requestID)
	if !ok {
		return correlation.Hidden
	}
	if !p.subscription.IsSubscribed(topic) {
		return correlation.NavigationDisabled
	}
	return status
}
