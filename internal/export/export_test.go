package export

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/snarg/mqtt-inspect/internal/idgen"
	"github.com/snarg/mqtt-inspect/internal/mqttmsg"
	"github.com/snarg/mqtt-inspect/internal/topicstore"
)

func entry(n byte, topic string, payload []byte) topicstore.BufferedEntry {
	var id idgen.ID
	id[15] = n
	return topicstore.BufferedEntry{
		ID:         id,
		Topic:      topic,
		Message:    mqttmsg.Message{Topic: topic, Payload: payload, QoS: mqttmsg.QoS1},
		ReceivedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestWriteJSON_RoundTripsTextPayload(t *testing.T) {
	entries := []topicstore.BufferedEntry{entry(1, "a/b", []byte("hello"))}
	out, err := Write(JSON, entries)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	var dtos []dto
	if err := json.Unmarshal(out, &dtos); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(dtos) != 1 || dtos[0].Payload != "hello" {
		t.Fatalf("got %+v", dtos)
	}
}

func TestWriteJSON_OmitsBinaryPayload(t *testing.T) {
	binary := []byte{0xff, 0xfe, 0x00, 0xd8}
	out, err := Write(JSON, []topicstore.BufferedEntry{entry(1, "a", binary)})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	var dtos []dto
	if err := json.Unmarshal(out, &dtos); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if dtos[0].Payload != "" {
		t.Fatalf("expected payload omitted, got %q", dtos[0].Payload)
	}
	if dtos[0].PayloadOmittedBytes != len(binary) {
		t.Fatalf("expected PayloadOmittedBytes=%d, got %d", len(binary), dtos[0].PayloadOmittedBytes)
	}
}

func TestWriteTxt_DelimitsMultipleMessages(t *testing.T) {
	entries := []topicstore.BufferedEntry{
		entry(1, "a", []byte("one")),
		entry(2, "a", []byte("two")),
	}
	out := string(mustWriteTxt(t, entries))
	count := strings.Count(out, strings.Repeat("=", 80))
	if count != 1 {
		t.Fatalf("expected exactly one 80-char delimiter between two messages, found %d", count)
	}
}

func TestWriteTxt_BinaryPlaceholder(t *testing.T) {
	binary := []byte{0x00, 0x01, 0x02}
	out := string(mustWriteTxt(t, []topicstore.BufferedEntry{entry(1, "a", binary)}))
	if !strings.Contains(out, "[Binary Data: 3 bytes]") {
		t.Fatalf("expected binary placeholder, got %q", out)
	}
}

func mustWriteTxt(t *testing.T, entries []topicstore.BufferedEntry) []byte {
	t.Helper()
	out, err := Write(Txt, entries)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	return out
}

func TestWrite_UnknownFormat(t *testing.T) {
	if _, err := Write("xml", nil); err == nil {
		t.Fatal("expected an error for an unknown format")
	}
}
