package plivo

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
)

// MediaStream is the bidirectional audio websocket Plivo opens for a
// streamed call. Writes are serialized; reads happen from one goroutine.
type MediaStream struct {
	conn     *websocket.Conn
	streamID string
	writeMu  sync.Mutex
}

func NewMediaStream(conn *websocket.Conn) *MediaStream {
	return &MediaStream{conn: conn}
}

// StreamID is the identifier Plivo assigned in the start event. Empty
// until the start event has been read.
func (s *MediaStream) StreamID() string { return s.streamID }

type outboundMedia struct {
	ContentType string `json:"contentType"`
	SampleRate  int    `json:"sampleRate"`
	Payload     string `json:"payload"`
}

type outboundMessage struct {
	Event string         `json:"event"`
	Media *outboundMedia `json:"media,omitempty"`
	Name  string         `json:"name,omitempty"`
	// StreamID addresses checkpoint and clearAudio events at the stream.
	StreamID string `json:"streamId,omitempty"`
}

func (s *MediaStream) SendAudio(audio []byte) error {
	return s.writeJSON(outboundMessage{
		Event: "playAudio",
		Media: &outboundMedia{
			ContentType: "audio/x-mulaw",
			SampleRate:  8000,
			Payload:     base64.StdEncoding.EncodeToString(audio),
		},
	})
}

func (s *MediaStream) Mark(name string) error {
	return s.writeJSON(outboundMessage{
		Event:    "checkpoint",
		StreamID: s.streamID,
		Name:     name,
	})
}

func (s *MediaStream) ClearAudio() error {
	return s.writeJSON(outboundMessage{
		Event:    "clearAudio",
		StreamID: s.streamID,
	})
}

func (s *MediaStream) Close() error {
	return s.conn.Close()
}

func (s *MediaStream) writeJSON(msg outboundMessage) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("failed to write to media stream: %w", err)
	}
	return nil
}

// InboundKind identifies one message arriving on the media stream.
type InboundKind string

const (
	// InboundStart is Plivo's stream handshake.
	InboundStart InboundKind = "start"
	// InboundAudio carries one chunk of line audio.
	InboundAudio InboundKind = "audio"
	// InboundPlayed acknowledges a checkpoint: all audio queued before
	// the named mark has played into the call.
	InboundPlayed InboundKind = "played"
	// InboundOther covers events the session does not act on.
	InboundOther InboundKind = "other"
)

// InboundEvent is one decoded message from the media stream.
type InboundEvent struct {
	Kind  InboundKind
	Audio []byte
	// Name is the checkpoint name for InboundPlayed.
	Name string
}

type inboundMessage struct {
	Event string `json:"event"`
	Start struct {
		StreamID string `json:"streamId"`
	} `json:"start"`
	Media struct {
		Payload string `json:"payload"`
	} `json:"media"`
	Name string `json:"name"`
}

// ReadEvent blocks for the next message on the stream. It returns an
// error once the websocket closes.
func (s *MediaStream) ReadEvent() (*InboundEvent, error) {
	for {
		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			return nil, fmt.Errorf("failed to read from media stream: %w", err)
		}

		var parsed inboundMessage
		if err := json.Unmarshal(msg, &parsed); err != nil {
			continue
		}

		switch parsed.Event {
		case "start":
			s.streamID = parsed.Start.StreamID
			return &InboundEvent{Kind: InboundStart}, nil
		case "media":
			audio, err := base64.StdEncoding.DecodeString(parsed.Media.Payload)
			if err != nil {
				continue
			}
			return &InboundEvent{Kind: InboundAudio, Audio: audio}, nil
		case "playedStream":
			return &InboundEvent{Kind: InboundPlayed, Name: parsed.Name}, nil
		default:
			return &InboundEvent{Kind: InboundOther}, nil
		}
	}
}
