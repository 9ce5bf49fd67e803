package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/burpheart/codex-viewer/internal/ingest"
	"github.com/burpheart/codex-viewer/internal/logging"
	"github.com/burpheart/codex-viewer/internal/markup"
	"github.com/burpheart/codex-viewer/internal/render"
	"github.com/burpheart/codex-viewer/internal/timeline"
	"github.com/burpheart/codex-viewer/internal/uploads"
)

// Route paths. PathRunCodeLog is the older name of the uploads page.
const (
	PathIndex      = "/index.html"
	PathUploads    = "/uploads.html"
	PathRunCodeLog = "/run_code_log.html"
	PathDocument   = "/api/document"
	PathStats      = "/api/stats"
	PathReload     = "/ws/reload"
)

// LineSource provides the current log lines.
type LineSource interface {
	Path() string
	Lines() []ingest.Line
	Stats() ingest.Stats
}

// Handler provides HTTP handlers for the viewer.
type Handler struct {
	hub      *Hub
	source   LineSource
	renderer *render.Renderer
	title    string
	tool     string
	logger   logging.Logger
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithRenderer sets the record renderer.
func WithRenderer(r *render.Renderer) HandlerOption {
	return func(h *Handler) { h.renderer = r }
}

// WithTitle sets the page title.
func WithTitle(title string) HandlerOption {
	return func(h *Handler) { h.title = title }
}

// WithTrackedTool sets the tool listed on the uploads page.
func WithTrackedTool(name string) HandlerOption {
	return func(h *Handler) { h.tool = name }
}

// WithLogger sets the handler logger.
func WithLogger(l logging.Logger) HandlerOption {
	return func(h *Handler) { h.logger = l }
}

// NewHandler creates a new API handler. hub may be nil, which disables
// live reload.
func NewHandler(hub *Hub, source LineSource, opts ...HandlerOption) *Handler {
	h := &Handler{
		hub:      hub,
		source:   source,
		renderer: render.New(),
		title:    timeline.DefaultTitle,
		tool:     uploads.DefaultTool,
		logger:   logging.NopLogger{},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Document assembles the timeline of the current lines.
func (h *Handler) Document() timeline.Document {
	records := ingest.Records(h.source.Lines())
	return timeline.Assemble(h.title, h.source.Path(), records, h.renderer)
}

// ReloadNotice is broadcast to websocket clients after the log changed.
type ReloadNotice struct {
	Type      string    `json:"type"`
	Lines     int       `json:"lines"`
	Malformed int       `json:"malformed"`
	At        time.Time `json:"at"`
}

// NotifyReload tells connected pages to reload. It fits ingest.ReloadCallback.
func (h *Handler) NotifyReload(lines []ingest.Line) {
	if h.hub == nil {
		return
	}
	h.hub.Broadcast(ReloadNotice{
		Type:      "reload",
		Lines:     len(lines),
		Malformed: ingest.Malformed(lines),
		At:        time.Now(),
	})
}

// HandleIndex serves the timeline page.
func (h *Handler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != PathIndex {
		http.NotFound(w, r)
		return
	}
	opts := []markup.Option{markup.WithUploadsLink(PathUploads)}
	if h.hub != nil {
		opts = append(opts, markup.WithReload(PathReload))
	}

	var buf bytes.Buffer
	if err := markup.WriteHTML(&buf, h.Document(), opts...); err != nil {
		h.serverError(w, err)
		return
	}
	writeHTML(w, buf.Bytes())
}

// HandleUploads serves the tracked tool uploads page.
func (h *Handler) HandleUploads(w http.ResponseWriter, r *http.Request) {
	ups := uploads.Extract(ingest.Records(h.source.Lines()), h.tool)
	page := markup.UploadsPage{
		Tool:     h.tool,
		Source:   h.source.Path(),
		BackLink: PathIndex,
		Uploads:  ups,
	}
	diffs, err := uploads.History(ups)
	if err != nil {
		h.logger.Warn("upload history: %v", err)
		page.Err = err.Error()
	} else {
		page.Diffs = diffs
	}

	var buf bytes.Buffer
	if err := markup.WriteUploads(&buf, page); err != nil {
		h.serverError(w, err)
		return
	}
	writeHTML(w, buf.Bytes())
}

// HandleDocument handles GET /api/document - the assembled timeline as JSON.
func (h *Handler) HandleDocument(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.Document())
}

// Stats is the body of GET /api/stats.
type Stats struct {
	ingest.Stats
	Cards       int            `json:"cards"`
	Collapsible int            `json:"collapsible"`
	Kinds       map[string]int `json:"kinds"`
	WSClients   int            `json:"ws_clients"`
}

// HandleStats handles GET /api/stats.
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	doc := h.Document()
	stats := Stats{
		Stats:       h.source.Stats(),
		Cards:       doc.Total,
		Collapsible: doc.Collapsible,
		Kinds:       doc.Counts(),
	}
	if h.hub != nil {
		stats.WSClients = h.hub.ClientCount()
	}
	writeJSON(w, stats)
}

// HandleWebSocket handles WebSocket connections for reload notifications.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		http.NotFound(w, r)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied to the client
		h.logger.Debug("websocket upgrade: %v", err)
		return
	}

	client := NewClient(h.hub, conn)
	if !h.hub.Register(client) {
		conn.Close()
		return
	}

	// Start pumps
	go client.WritePump()
	client.ReadPump()
}

// HandleCORS handles CORS preflight requests.
func (h *Handler) HandleCORS(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.WriteHeader(http.StatusOK)
}

// RegisterRoutes registers all routes on the given mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/", getOnly(h.HandleIndex))
	mux.HandleFunc(PathUploads, getOnly(h.HandleUploads))
	mux.HandleFunc(PathRunCodeLog, getOnly(h.HandleUploads))
	mux.HandleFunc(PathDocument, h.withCORS(h.HandleDocument))
	mux.HandleFunc(PathStats, h.withCORS(h.HandleStats))
	mux.HandleFunc(PathReload, h.HandleWebSocket)
}

func (h *Handler) withCORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			h.HandleCORS(w, r)
			return
		}
		getOnly(next)(w, r)
	}
}

func getOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		next(w, r)
	}
}

func (h *Handler) serverError(w http.ResponseWriter, err error) {
	h.logger.Error("render: %v", err)
	http.Error(w, "failed to render page", http.StatusInternalServerError)
}

func writeHTML(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(body)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	json.NewEncoder(w).Encode(v)
}
