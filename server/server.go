// Package server exposes the order API, the carrier webhook endpoints,
// and the media websockets that feed live calls.
package server

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	callsession "github.com/orderline-ai/orderline/core"
	"github.com/orderline-ai/orderline/core/carrier"
	"github.com/orderline-ai/orderline/core/dialogue"
	"github.com/orderline-ai/orderline/core/order"
	"github.com/orderline-ai/orderline/core/respond"
	"github.com/orderline-ai/orderline/core/synthesize"
	"github.com/orderline-ai/orderline/core/transcribe"
	"github.com/orderline-ai/orderline/lookup"
)

type Server struct {
	baseURL    string
	fromNumber string

	store   *order.Store
	carrier carrier.Controller
	lookup  *lookup.Client

	newTranscriber func() transcribe.Client
	newSynthesizer func() (synthesize.Client, error)
	llm            respond.Provider
	dialogueOpts   []dialogue.EngineOption
	recordCalls    bool

	mu        sync.RWMutex
	sessions  map[string]*callsession.Session
	listeners map[string]*listenFeed
	// dialed guards the restaurant leg of listen-in orders: the listener
	// stream starting and the listener giving up can both trigger it.
	dialed map[string]bool

	upgrader websocket.Upgrader
}

type Option func(*Server)

// WithBaseURL sets the public base URL carrier webhooks are rooted at.
func WithBaseURL(baseURL string) Option {
	return func(s *Server) { s.baseURL = baseURL }
}

// WithFromNumber sets the caller ID for outbound calls.
func WithFromNumber(number string) Option {
	return func(s *Server) { s.fromNumber = number }
}

func WithCarrier(controller carrier.Controller) Option {
	return func(s *Server) { s.carrier = controller }
}

func WithLookup(client *lookup.Client) Option {
	return func(s *Server) { s.lookup = client }
}

func WithTranscriberFactory(factory func() transcribe.Client) Option {
	return func(s *Server) { s.newTranscriber = factory }
}

func WithSynthesizerFactory(factory func() (synthesize.Client, error)) Option {
	return func(s *Server) { s.newSynthesizer = factory }
}

// WithResponder lets the model word each session's lines from the live
// conversation and raise the customer hand-off itself. The composer is
// built per order because it carries the order's system prompt.
func WithResponder(llm respond.Provider) Option {
	return func(s *Server) { s.llm = llm }
}

// WithDialogueOptions passes options through to every session's dialogue
// engine.
func WithDialogueOptions(opts ...dialogue.EngineOption) Option {
	return func(s *Server) { s.dialogueOpts = append(s.dialogueOpts, opts...) }
}

// WithRecording records every placed call.
func WithRecording() Option {
	return func(s *Server) { s.recordCalls = true }
}

func New(store *order.Store, opts ...Option) *Server {
	s := &Server{
		store:     store,
		sessions:  make(map[string]*callsession.Session),
		listeners: make(map[string]*listenFeed),
		dialed:    make(map[string]bool),
		upgrader:  websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the full route table wrapped in request tracing.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /orders", s.handleStartOrder)
	mux.HandleFunc("GET /orders/{id}", s.handleGetOrder)
	mux.HandleFunc("GET /orders/{id}/recording", s.handleGetRecording)

	mux.HandleFunc("POST /webhooks/ring/{id}", s.handleRing)
	mux.HandleFunc("POST /webhooks/answer/{id}", s.handleAnswer)
	mux.HandleFunc("POST /webhooks/hangup/{id}", s.handleHangup)
	mux.HandleFunc("POST /webhooks/bridge/{number}", s.handleBridge)
	mux.HandleFunc("POST /webhooks/recording/{uuid}", s.handleRecordingCallback)

	mux.HandleFunc("/media/{id}", s.handleMedia)
	mux.HandleFunc("/media-listen/{id}", s.handleListenMedia)

	return otelhttp.NewHandler(mux, "server")
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) session(id string) (*callsession.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	return session, ok
}

func (s *Server) registerSession(id string, session *callsession.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = session
}
