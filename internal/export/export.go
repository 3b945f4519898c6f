// Package export implements the bulk message export writers: a JSON array
// of DTOs, or a UTF-8 text blob with messages delimited by an 80-character
// run of '='. Both formats embed every metadata field verbatim;
// binary/non-UTF-8 payloads are handled specially per format (omitted from
// JSON, rendered as a byte-count placeholder in text).
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/snarg/mqtt-inspect/internal/mqttmsg"
	"github.com/snarg/mqtt-inspect/internal/topicstore"
)

// Format selects the serialization used by Write.
type Format string

const (
	JSON Format = "json"
	Txt  Format = "txt"
)

// delimiter separates consecutive messages in the text format: an
// 80-character run of '='.
const delimiter = "================================================================================"

// dto is the JSON-array element written for each exported entry. Every
// metadata field round-trips verbatim; a binary or non-UTF-8 payload is
// omitted (PayloadOmittedBytes records its length instead).
type dto struct {
	ID                     string             `json:"id"`
	Topic                  string             `json:"topic"`
	ReceivedAt             string             `json:"received_at"`
	QoS                    byte               `json:"qos"`
	Retain                 bool               `json:"retain"`
	Payload                string             `json:"payload,omitempty"`
	PayloadOmittedBytes    int                `json:"payload_omitted_bytes,omitempty"`
	ResponseTopic          string             `json:"response_topic,omitempty"`
	CorrelationData        string             `json:"correlation_data,omitempty"`
	ContentType            string             `json:"content_type,omitempty"`
	MessageExpiryInterval  *uint32            `json:"message_expiry_interval,omitempty"`
	PayloadFormatIndicator *string            `json:"payload_format_indicator,omitempty"`
	UserProperties         []userPropertyJSON `json:"user_properties,omitempty"`
}

type userPropertyJSON struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Write serializes entries (already snapshotted from a TopicStore) in the
// given format and returns the bytes to save. entries are written in the
// order given — callers pass TopicStore.MessagesFor's insertion order for
// a single-topic export, or a concatenation across topics for `export all`.
func Write(format Format, entries []topicstore.BufferedEntry) ([]byte, error) {
	switch format {
	case JSON:
		return writeJSON(entries)
	case Txt:
		return writeTxt(entries), nil
	default:
		return nil, fmt.Errorf("export: unknown format %q", format)
	}
}

func writeJSON(entries []topicstore.BufferedEntry) ([]byte, error) {
	dtos := make([]dto, len(entries))
	for i, e := range entries {
		dtos[i] = toDTO(e)
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(dtos); err != nil {
		return nil, fmt.Errorf("export: marshal json: %w", err)
	}
	return buf.Bytes(), nil
}

func toDTO(e topicstore.BufferedEntry) dto {
	d := dto{
		ID:         e.ID.String(),
		Topic:      e.Topic,
		ReceivedAt: e.ReceivedAt.UTC().Format("2006-01-02T15:04:05.000Z"),
		QoS:        byte(e.Message.QoS),
		Retain:     e.Message.Retain,
	}
	if isText(e.Message.Payload) {
		d.Payload = string(e.Message.Payload)
	} else {
		d.PayloadOmittedBytes = len(e.Message.Payload)
	}
	d.ResponseTopic = e.Message.ResponseTopic
	if len(e.Message.CorrelationData) > 0 {
		d.CorrelationData = fmt.Sprintf("%x", e.Message.CorrelationData)
	}
	d.ContentType = e.Message.ContentType
	d.MessageExpiryInterval = e.Message.MessageExpiryInterval
	if e.Message.PayloadFormatIndicator != nil {
		s := "binary"
		if *e.Message.PayloadFormatIndicator == mqttmsg.PayloadFormatUTF8 {
			s = "utf8"
		}
		d.PayloadFormatIndicator = &s
	}
	for _, p := range e.Message.UserProperties {
		d.UserProperties = append(d.UserProperties, userPropertyJSON{Name: p.Name, Value: p.Value})
	}
	return d
}

func writeTxt(entries []topicstore.BufferedEntry) []byte {
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteString(delimiter)
			b.WriteString("\n")
		}
		writeTxtEntry(&b, e)
	}
	return []byte(b.String())
}

func writeTxtEntry(b *strings.Builder, e topicstore.BufferedEntry) {
	fmt.Fprintf(b, "Topic: %s\n", e.Topic)
	fmt.Fprintf(b, "ID: %s\n", e.ID.String())
	fmt.Fprintf(b, "ReceivedAt: %s\n", e.ReceivedAt.UTC().Format("2006-01-02T15:04:05.000Z"))
	fmt.Fprintf(b, "QoS: %d\n", e.Message.QoS)
	fmt.Fprintf(b, "Retain: %t\n", e.Message.Retain)
	if e.Message.ResponseTopic != "" {
		fmt.Fprintf(b, "ResponseTopic: %s\n", e.Message.ResponseTopic)
	}
	if len(e.Message.CorrelationData) > 0 {
		fmt.Fprintf(b, "CorrelationData: %x\n", e.Message.CorrelationData)
	}
	if e.Message.ContentType != "" {
		fmt.Fprintf(b, "ContentType: %s\n", e.Message.ContentType)
	}
	if e.Message.MessageExpiryInterval != nil {
		fmt.Fprintf(b, "MessageExpiryInterval: %d\n", *e.Message.MessageExpiryInterval)
	}
	for _, p := range e.Message.UserProperties {
		fmt.Fprintf(b, "UserProperty: %s=%s\n", p.Name, p.Value)
	}
	if isText(e.Message.Payload) {
		fmt.Fprintf(b, "Payload:\n%s\n", string(e.Message.Payload))
	} else {
		fmt.Fprintf(b, "Payload:\n[Binary Data: %d bytes]\n", len(e.Message.Payload))
	}
}

// isText reports whether payload can be embedded as text: valid UTF-8 with
// no control characters other than tab, newline and carriage return.
func isText(payload []byte) bool {
	if !utf8.Valid(payload) {
		return false
	}
	return bytes.IndexFunc(payload, func(r rune) bool {
		return unicode.IsControl(r) && r != '\t' && r != '\n' && r != '\r'
	}) < 0
}
