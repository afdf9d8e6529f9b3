package server

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"

	"github.com/orderline-ai/orderline/core/order"
)

// listenerPrefix marks the session identifier of a listen-only leg. The
// listener shares the order's webhook routes but never drives the call.
const listenerPrefix = "listen-"

type streamElement struct {
	KeepCallAlive bool   `xml:"keepCallAlive,attr"`
	Bidirectional bool   `xml:"bidirectional,attr"`
	ContentType   string `xml:"contentType,attr"`
	URL           string `xml:",chardata"`
}

type dialElement struct {
	Number string `xml:"Number"`
}

type answerResponse struct {
	XMLName xml.Name       `xml:"Response"`
	Stream  *streamElement `xml:"Stream,omitempty"`
	Dial    *dialElement   `xml:"Dial,omitempty"`
}

func writeXML(w http.ResponseWriter, response answerResponse) {
	w.Header().Set("Content-Type", "application/xml")
	w.Write([]byte(xml.Header))
	if err := xml.NewEncoder(w).Encode(response); err != nil {
		logger.Warn("Failed to encode webhook response", "error", err)
	}
}

func (s *Server) handleRing(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if strings.HasPrefix(id, listenerPrefix) {
		w.WriteHeader(http.StatusOK)
		return
	}

	session, ok := s.session(id)
	if !ok {
		http.Error(w, "unknown session", http.StatusNotFound)
		return
	}
	session.Signals().Ringing()
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	callUUID := r.PostFormValue("CallUUID")

	if orderID, ok := strings.CutPrefix(id, listenerPrefix); ok {
		s.store.Update(orderID, func(t *order.Tracked) { t.ListenerCallUUID = callUUID })
		writeXML(w, answerResponse{Stream: &streamElement{
			KeepCallAlive: true,
			Bidirectional: true,
			ContentType:   "audio/x-mulaw;rate=8000",
			URL:           s.mediaURL(r, "/media-listen/"+orderID),
		}})
		return
	}

	session, ok := s.session(id)
	if !ok {
		http.Error(w, "unknown session", http.StatusNotFound)
		return
	}

	session.SetCallUUID(callUUID)
	s.store.Update(id, func(t *order.Tracked) { t.CallUUID = callUUID })
	session.Signals().Answered()

	writeXML(w, answerResponse{Stream: &streamElement{
		KeepCallAlive: true,
		Bidirectional: true,
		ContentType:   "audio/x-mulaw;rate=8000",
		URL:           s.mediaURL(r, "/media/"+id),
	}})
}

func (s *Server) handleHangup(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	cause := r.PostFormValue("HangupCause")
	ctx := context.WithoutCancel(r.Context())

	if orderID, ok := strings.CutPrefix(id, listenerPrefix); ok {
		logger.Info("Listener leg hung up", "order_id", orderID, "cause", cause)
		s.dropListenFeed(orderID)
		// Losing the listener never aborts the order. If the listener
		// gave up before the order call went out, place it now.
		if err := s.dialRestaurant(ctx, orderID); err != nil {
			logger.Warn("Failed to dial restaurant after listener hangup",
				"order_id", orderID, "error", err)
		}
		w.WriteHeader(http.StatusOK)
		return
	}

	session, ok := s.session(id)
	if !ok {
		http.Error(w, "unknown session", http.StatusNotFound)
		return
	}

	switch cause {
	case "USER_BUSY":
		session.Signals().Busy()
	case "", "NORMAL_CLEARING", "NORMAL_HANGUP":
		session.Signals().HungUp()
	default:
		session.Signals().Failed(cause)
	}
	s.hangUpListener(ctx, id)
	w.WriteHeader(http.StatusOK)
}

// hangUpListener ends the listen-only leg once the order call is over.
func (s *Server) hangUpListener(ctx context.Context, id string) {
	tracked, ok := s.store.Get(id)
	if !ok || tracked.ListenerCallUUID == "" {
		return
	}
	if err := s.carrier.HangUp(ctx, tracked.ListenerCallUUID); err != nil {
		logger.Warn("Failed to hang up listener leg", "order_id", id, "error", err)
	}
}

// handleBridge answers the redirected agent leg by dialing the customer
// in. From here the call is restaurant and customer only.
func (s *Server) handleBridge(w http.ResponseWriter, r *http.Request) {
	number := r.PathValue("number")
	if number == "" {
		http.Error(w, "missing customer number", http.StatusBadRequest)
		return
	}
	writeXML(w, answerResponse{Dial: &dialElement{Number: number}})
}

func (s *Server) handleRecordingCallback(w http.ResponseWriter, r *http.Request) {
	callUUID := r.PathValue("uuid")
	recordingURL := r.PostFormValue("RecordUrl")
	if recordingURL == "" {
		recordingURL = r.PostFormValue("recording_url")
	}

	tracked, ok := s.store.FindByCallUUID(callUUID)
	if !ok {
		http.Error(w, "unknown call", http.StatusNotFound)
		return
	}

	s.store.Update(tracked.ID, func(t *order.Tracked) {
		if t.ListenerCallUUID == callUUID {
			t.ListenerRecordingURL = recordingURL
		} else {
			t.RecordingURL = recordingURL
		}
	})
	w.WriteHeader(http.StatusOK)
}

// mediaURL derives the websocket endpoint for a call's media stream from
// the configured base URL, falling back to the request host.
func (s *Server) mediaURL(r *http.Request, path string) string {
	if s.baseURL != "" {
		base := strings.TrimSuffix(s.baseURL, "/")
		base = strings.Replace(base, "https://", "wss://", 1)
		base = strings.Replace(base, "http://", "ws://", 1)
		return base + path
	}
	return fmt.Sprintf("wss://%s%s", r.Host, path)
}
