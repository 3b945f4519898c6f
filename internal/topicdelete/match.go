package topicdelete

import "strings"

// HasWildcard reports whether pattern contains an MQTT wildcard level.
func HasWildcard(pattern string) bool {
	return strings.ContainsAny(pattern, "+#")
}

// Match reports whether topic falls under the MQTT filter pattern: `+`
// matches exactly one level, a trailing `#` matches the remainder of the
// topic including zero levels. Matching is case-sensitive, as topic names
// are on the wire.
func Match(pattern, topic string) bool {
	pl := strings.Split(pattern, "/")
	tl := strings.Split(topic, "/")

	for i, p := range pl {
		if p == "#" {
			return i == len(pl)-1
		}
		if i >= len(tl) {
			return false
		}
		if p != "+" && p != tl[i] {
			return false
		}
	}
	return len(pl) == len(tl)
}
