package topicdelete

import "testing"

func TestMatch(t *testing.T) {
	cases := []struct {
		pattern string
		topic   string
		want    bool
	}{
		{"a/b/c", "a/b/c", true},
		{"a/b/c", "a/b/d", false},
		{"a/+/c", "a/b/c", true},
		{"a/+/c", "a/b/d", false},
		{"a/+/c", "a/b/x/c", false},
		{"+", "a", true},
		{"+", "a/b", false},
		{"a/#", "a/b/c", true},
		{"a/#", "a", true},
		{"#", "anything/at/all", true},
		{"a/#", "b/c", false},
		{"a/b", "a/b/c", false},
		{"a/b/c", "a/b", false},
		{"A/b", "a/b", false},
	}
	for _, tc := range cases {
		if got := Match(tc.pattern, tc.topic); got != tc.want {
			t.Errorf("Match(%q, %q) = %v, want %v", tc.pattern, tc.topic, got, tc.want)
		}
	}
}

func TestHasWildcard(t *testing.T) {
	if HasWildcard("a/b/c") {
		t.Error("exact topic should not report a wildcard")
	}
	if !HasWildcard("a/+/c") || !HasWildcard("a/#") {
		t.Error("wildcard patterns should be detected")
	}
}
