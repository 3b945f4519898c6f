package topicstore

import (
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/snarg/mqtt-inspect/internal/mqttmsg"
)

const (
	proxyPayload   = "Payload too large for buffer"
	proxyPreviewLen = 100
)

// buildProxy constructs the synthetic substitute entry inserted when a
// message can never fit its topic's budget. The original
// message's user-properties are preserved and the proxy markers appended.
func buildProxy(original mqttmsg.Message, now time.Time) mqttmsg.Message {
	proxy := original
	proxy.Payload = []byte(proxyPayload)
	proxy.UserProperties = append([]mqttmsg.UserProperty(nil), original.UserProperties...)
	proxy.UserProperties = append(proxy.UserProperties,
		mqttmsg.UserProperty{Name: "CrowProxy", Value: "PayloadTooLarge"},
		mqttmsg.UserProperty{Name: "OriginalPayloadSize", Value: strconv.Itoa(len(original.Payload))},
		mqttmsg.UserProperty{Name: "ReceivedTime", Value: now.Format(time.RFC3339)},
		mqttmsg.UserProperty{Name: "Preview", Value: preview(original.Payload)},
	)
	return proxy
}

// preview returns the first 100 UTF-8 chars (runes) of payload, or the
// binary placeholder when payload isn't valid UTF-8.
func preview(payload []byte) string {
	if !utf8.Valid(payload) {
		return "[Binary or non-UTF8 Payload]"
	}
	runes := []rune(string(payload))
	if len(runes) > proxyPreviewLen {
		runes = runes[:proxyPreviewLen]
	}
	return string(runes)
}
