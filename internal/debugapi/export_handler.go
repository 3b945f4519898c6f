package debugapi

import (
	"fmt"
	"net/http"

	"github.com/snarg/mqtt-inspect/internal/export"
	"github.com/snarg/mqtt-inspect/internal/topicstore"
)

// Store is the subset of topicstore.Store the export handler needs.
type Store interface {
	MessagesFor(topic string) []topicstore.BufferedEntry
	Topics() []string
}

// ExportHandler serves a bulk export download over HTTP: the same two
// formats the `:export`/`:export all` commands produce, reachable without
// going through command execution.
type ExportHandler struct {
	store Store
}

// NewExportHandler builds an ExportHandler over store.
func NewExportHandler(store Store) *ExportHandler {
	return &ExportHandler{store: store}
}

// ServeHTTP handles GET /api/v1/export?topic=<topic|all>&format=json|txt.
func (h *ExportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	format := export.Format(r.URL.Query().Get("format"))
	if format == "" {
		format = export.JSON
	}
	if format != export.JSON && format != export.Txt {
		WriteError(w, http.StatusBadRequest, "format must be json or txt")
		return
	}

	topic := r.URL.Query().Get("topic")
	if topic == "" {
		WriteError(w, http.StatusBadRequest, "topic query parameter is required (use topic=all for every topic)")
		return
	}

	var entries []topicstore.BufferedEntry
	if topic == "all" {
		for _, t := range h.store.Topics() {
			entries = append(entries, h.store.MessagesFor(t)...)
		}
	} else {
		entries = h.store.MessagesFor(topic)
	}

	out, err := export.Write(format, entries)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	contentType := "application/json"
	ext := "json"
	if format == export.Txt {
		contentType = "text/plain; charset=utf-8"
		ext = "txt"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="export.%s"`, ext))
	w.Write(out)
}
