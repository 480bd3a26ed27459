// ============================================================================
// Diktat - Sprachtranskription
// ============================================================================
//
// Package:     server
// Description: WebSocket audio ingest and control frames
// Created:     2026-09-24
// License:     MIT
// ============================================================================

package server

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/msto63/diktat/internal/audio"
	"github.com/msto63/diktat/pkg/core/logging"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed for the hello message after the upgrade
	helloWait = 10 * time.Second

	// Maximum frame message size; 1 s of 48 kHz float32
	maxMessageSize = 48000 * 4
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Hello is the first message of a capture client
type Hello struct {
	SampleRate int `json:"sample_rate"`
}

// Control is sent to the capture client when a recording starts or stops
type Control struct {
	Command       string `json:"command"`
	BufferSamples *int   `json:"buffer_samples,omitempty"`
}

// WSSource is an audio.Source fed by one remote capture client (for example
// a browser audio worklet) over a WebSocket. Frames are binary messages of
// little-endian float32 samples.
type WSSource struct {
	logger *logging.Logger
	queue  int

	mu      sync.Mutex
	client  *wsClient
	stream  *audio.FrameStream
	samples int
}

type wsClient struct {
	conn    *websocket.Conn
	rate    int
	writeMu sync.Mutex
}

func (c *wsClient) send(v interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(v)
}

// NewWSSource creates a source with no client connected
func NewWSSource(logger *logging.Logger) *WSSource {
	if logger == nil {
		logger = logging.Nop()
	}
	return &WSSource{logger: logger, queue: audio.DefaultFrameQueue}
}

// Connected reports whether a capture client is connected
func (s *WSSource) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.client != nil
}

// Acquire implements audio.Source
func (s *WSSource) Acquire(ctx context.Context) (audio.Stream, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client == nil {
		return nil, fmt.Errorf("%w: no capture client connected", audio.ErrResourceDenied)
	}
	if s.stream != nil {
		return nil, fmt.Errorf("%w: capture already in use", audio.ErrResourceDenied)
	}

	client := s.client
	if err := client.send(Control{Command: audio.CommandStart}); err != nil {
		return nil, fmt.Errorf("%w: %v", audio.ErrResourceDenied, err)
	}

	var stream *audio.FrameStream
	stream = audio.NewFrameStream(client.rate, s.queue, func() error {
		s.mu.Lock()
		n := s.samples
		if s.stream == stream {
			s.stream = nil
		}
		s.mu.Unlock()
		return client.send(Control{Command: audio.CommandStop, BufferSamples: &n})
	})
	s.stream = stream
	s.samples = 0
	return stream, nil
}

// Handler is the echo handler for GET /api/v1/capture/ws
func (s *WSSource) Handler(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		s.logger.Error("WebSocket upgrade failed", "error", err)
		return nil
	}
	s.serve(conn)
	return nil
}

func (s *WSSource) serve(conn *websocket.Conn) {
	defer conn.Close()
	conn.SetReadLimit(maxMessageSize)

	conn.SetReadDeadline(time.Now().Add(helloWait))
	var hello Hello
	if err := conn.ReadJSON(&hello); err != nil || hello.SampleRate <= 0 {
		s.logger.Warn("Capture client sent no valid hello", "error", err)
		closeWith(conn, websocket.ClosePolicyViolation, "expected hello with sample_rate")
		return
	}
	conn.SetReadDeadline(time.Time{})

	client := &wsClient{conn: conn, rate: hello.SampleRate}
	if !s.register(client) {
		closeWith(conn, websocket.CloseTryAgainLater, "another capture client is connected")
		return
	}
	defer s.unregister(client)

	s.logger.Info("Capture client connected", "remote", conn.RemoteAddr().String(), "sample_rate", hello.SampleRate)

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Error("WebSocket read error", "error", err)
			} else {
				s.logger.Info("Capture client disconnected")
			}
			return
		}
		if msgType != websocket.BinaryMessage {
			continue
		}
		frame, err := DecodeFrame(data)
		if err != nil {
			s.logger.Warn("Invalid capture frame", "error", err)
			continue
		}
		s.deliver(frame)
	}
}

func (s *WSSource) register(c *wsClient) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client != nil {
		return false
	}
	s.client = c
	return true
}

func (s *WSSource) unregister(c *wsClient) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client == c {
		s.client = nil
	}
}

func (s *WSSource) deliver(frame []float32) {
	s.mu.Lock()
	stream := s.stream
	s.mu.Unlock()
	if stream == nil {
		return
	}
	if stream.Deliver(frame) {
		s.mu.Lock()
		s.samples += len(frame)
		s.mu.Unlock()
	}
}

func closeWith(conn *websocket.Conn, code int, text string) {
	msg := websocket.FormatCloseMessage(code, text)
	conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
}

var errFrameSize = errors.New("frame length is not a multiple of 4")

// DecodeFrame converts little-endian float32 bytes to samples
func DecodeFrame(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, errFrameSize
	}
	out := make([]float32, len(data)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return out, nil
}

// EncodeFrame converts samples to little-endian float32 bytes
func EncodeFrame(samples []float32) []byte {
	out := make([]byte, len(samples)*4)
	for i, v := range samples {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return out
}
