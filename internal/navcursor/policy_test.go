package navcursor

import (
	"testing"

	"github.com/snarg/mqtt-inspect/internal/correlation"
	"github.com/snarg/mqtt-inspect/internal/idgen"
)

type fakeTracker struct {
	status map[idgen.ID]correlation.Status
	topic  map[idgen.ID]string
}

func (f *fakeTracker) StatusOf(id idgen.ID) correlation.Status {
	s, ok := f.status[id]
	if !ok {
		return correlation.Hidden
	}
	return s
}

func (f *fakeTracker) ResponseTopicOf(id idgen.ID) (string, bool) {
	t, ok := f.topic[id]
	return t, ok
}

type fakeOracle struct{ subscribed map[string]bool }

func (f *fakeOracle) IsSubscribed(topic string) bool { return f.subscribed[topic] }

func TestPolicyHiddenWhenUntracked(t *testing.T) {
	p := NewPolicy(&fakeTracker{status: map[idgen.ID]correlation.Status{}}, &fakeOracle{})
	if got := p.StatusFor(idFor(1)); got != correlation.Hidden {
		t.Fatalf("status = %v, want Hidden", got)
	}
}

func TestPolicyNavigationDisabledWhenUnsubscribed(t *testing.T) {
	id := idFor(1)
	tr := &fakeTracker{
		status: map[idgen.ID]correlation.Status{id: correlation.Received},
		topic:  map[idgen.ID]string{id: "res/a"},
	}
	p := NewPolicy(tr, &fakeOracle{subscribed: map[string]bool{}})
	if got := p.StatusFor(id); got != correlation.NavigationDisabled {
		t.Fatalf("status = %v, want NavigationDisabled", got)
	}
}

func TestPolicyPassesThroughWhenSubscribed(t *testing.T) {
	id := idFor(1)
	tr := &fakeTracker{
		status: map[idgen.ID]correlation.Status{id: correlation.Pending},
		topic:  map[idgen.ID]string{id: "res/a"},
	}
	p := NewPolicy(tr, &fakeOracle{subscribed: map[string]bool{"res/a": true}})
	if got := p.StatusFor(id); got != correlation.Pending {
		t.Fatalf("status = %v, want Pending", got)
	}
}
