package server

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/orderline-ai/orderline/core/audio"
	"github.com/orderline-ai/orderline/core/carrier"
	plivomedia "github.com/orderline-ai/orderline/core/carrier/plivo"
)

// listenFeed fans the call's audio out to the listen-only leg. The line
// side clocks the mix: each inbound chunk drains an equal share of
// buffered agent audio so the listener hears both sides in step.
type listenFeed struct {
	mu     sync.Mutex
	agent  []byte
	stream *plivomedia.MediaStream
}

func (f *listenFeed) attach(stream *plivomedia.MediaStream) {
	f.mu.Lock()
	f.stream = stream
	f.mu.Unlock()
}

func (f *listenFeed) pushAgent(chunk []byte) {
	f.mu.Lock()
	f.agent = append(f.agent, chunk...)
	f.mu.Unlock()
}

func (f *listenFeed) pushLine(chunk []byte) {
	f.mu.Lock()
	stream := f.stream
	take := len(chunk)
	if take > len(f.agent) {
		take = len(f.agent)
	}
	agentChunk := f.agent[:take]
	mixed := audio.MixUlaw(chunk, agentChunk)
	f.agent = f.agent[take:]
	f.mu.Unlock()

	if stream == nil {
		return
	}
	if err := stream.SendAudio(mixed); err != nil {
		logger.Warn("Failed to feed listener audio", "error", err)
	}
}

func (f *listenFeed) close() {
	f.mu.Lock()
	stream := f.stream
	f.stream = nil
	f.agent = nil
	f.mu.Unlock()

	if stream != nil {
		stream.Close()
	}
}

// teeMedia mirrors outbound agent audio into the listen feed on its way
// to the call.
type teeMedia struct {
	carrier.MediaStream
	feed *listenFeed
}

func (t *teeMedia) SendAudio(chunk []byte) error {
	t.feed.pushAgent(chunk)
	return t.MediaStream.SendAudio(chunk)
}

func (s *Server) handleMedia(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	session, ok := s.session(id)
	if !ok {
		http.Error(w, "unknown session", http.StatusNotFound)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("Failed to upgrade media connection", "session_id", id, "error", err)
		return
	}

	stream := plivomedia.NewMediaStream(conn)
	event, err := stream.ReadEvent()
	if err != nil || event.Kind != plivomedia.InboundStart {
		logger.Warn("Media stream did not start", "session_id", id, "error", err)
		stream.Close()
		return
	}

	var feed *listenFeed
	var media carrier.MediaStream = stream
	if tracked, ok := s.store.Get(id); ok && tracked.ListenIn {
		feed = s.registerListenFeed(id)
		media = &teeMedia{MediaStream: stream, feed: feed}
	}
	if err := session.Link(r.Context(), media); err != nil {
		logger.Warn("Failed to link media stream", "session_id", id, "error", err)
		stream.Close()
		return
	}

	for {
		event, err := stream.ReadEvent()
		if err != nil {
			if !strings.Contains(err.Error(), "websocket: close") {
				logger.Info("Media stream closed", "session_id", id, "error", err)
			}
			break
		}

		switch event.Kind {
		case plivomedia.InboundAudio:
			session.HandleAudio(event.Audio)
			if feed != nil {
				feed.pushLine(event.Audio)
			}
		case plivomedia.InboundPlayed:
			session.HandleMarkPlayed(event.Name)
		}
	}

	// The order call's media is gone; take the listener leg down with it.
	s.dropListenFeed(id)
	s.hangUpListener(context.WithoutCancel(r.Context()), id)
	session.Signals().HungUp()
}

func (s *Server) handleListenMedia(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	tracked, ok := s.store.Get(id)
	if !ok || !tracked.ListenIn {
		http.Error(w, "no live call to listen to", http.StatusNotFound)
		return
	}
	feed := s.registerListenFeed(id)

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("Failed to upgrade listener connection", "order_id", id, "error", err)
		return
	}

	stream := plivomedia.NewMediaStream(conn)
	event, err := stream.ReadEvent()
	if err != nil || event.Kind != plivomedia.InboundStart {
		logger.Warn("Listener stream did not start", "order_id", id, "error", err)
		stream.Close()
		return
	}
	feed.attach(stream)

	// The listener is on the line; now place the order call itself.
	if err := s.dialRestaurant(context.WithoutCancel(r.Context()), id); err != nil {
		logger.Warn("Failed to dial restaurant", "order_id", id, "error", err)
	}

	// Drain the listener's uplink; their audio never enters the call.
	for {
		if _, err := stream.ReadEvent(); err != nil {
			break
		}
	}
	feed.attach(nil)
	stream.Close()
}

func (s *Server) registerListenFeed(id string) *listenFeed {
	s.mu.Lock()
	defer s.mu.Unlock()
	if feed, ok := s.listeners[id]; ok {
		return feed
	}
	feed := &listenFeed{}
	s.listeners[id] = feed
	return feed
}

func (s *Server) dropListenFeed(id string) {
	s.mu.Lock()
	feed := s.listeners[id]
	delete(s.listeners, id)
	s.mu.Unlock()

	if feed != nil {
		feed.close()
	}
}
