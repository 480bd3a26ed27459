// ============================================================================
// Diktat - Sprachtranskription
// ============================================================================
//
// Package:     history
// Description: History store over pluggable backends
// Created:     2026-09-22
// License:     MIT
// ============================================================================

package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

var (
	// ErrTooShort is returned by Insert for transcriptions under MinTranscriptionLength
	ErrTooShort = errors.New("history: transcription too short")

	// ErrNotFound is returned by a Substrate for a missing key and by Get for a missing entry
	ErrNotFound = errors.New("history: not found")

	// ErrCorrupt is returned when the stored list cannot be decoded
	ErrCorrupt = errors.New("history: stored list is corrupt")
)

// DefaultKey is the substrate key holding the serialized list
const DefaultKey = "transcription_history"

// Substrate is a key-value store of opaque values
type Substrate interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

// Pinger is implemented by substrates that can check their connection
type Pinger interface {
	Ping(ctx context.Context) error
}

// Store keeps the history as one JSON list under a fixed key. Every insert
// and delete is a read-modify-write of the whole list, serialized by the store.
type Store struct {
	mu     sync.Mutex
	sub    Substrate
	key    string
	now    func() time.Time
	lastID int64
}

// NewStore creates a store over sub; an empty key uses DefaultKey
func NewStore(sub Substrate, key string) *Store {
	if key == "" {
		key = DefaultKey
	}
	return &Store{sub: sub, key: key, now: time.Now}
}

// Insert prepends a new entry. Transcriptions shorter than
// MinTranscriptionLength after trimming are rejected and nothing is written.
func (s *Store) Insert(ctx context.Context, transcription string, summary *string) (Entry, error) {
	if !LongEnough(transcription) {
		return Entry{}, ErrTooShort
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read(ctx)
	if err != nil {
		return Entry{}, err
	}

	now := s.now()
	id := now.UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	if len(entries) > 0 && id <= entries[0].ID {
		id = entries[0].ID + 1
	}

	entry := Entry{
		ID:            id,
		Date:          now.Format(DateLayout),
		Transcription: strings.TrimSpace(transcription),
	}
	if summary != nil {
		sum := *summary
		entry.Summary = &sum
	}

	entries = append([]Entry{entry}, entries...)
	if err := s.write(ctx, entries); err != nil {
		return Entry{}, err
	}
	s.lastID = id
	return entry, nil
}

// List returns all entries, newest first
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(ctx)
}

// Get returns the entry with id or ErrNotFound
func (s *Store) Get(ctx context.Context, id int64) (Entry, error) {
	entries, err := s.List(ctx)
	if err != nil {
		return Entry{}, err
	}
	for _, e := range entries {
		if e.ID == id {
			return e, nil
		}
	}
	return Entry{}, fmt.Errorf("%w: entry %d", ErrNotFound, id)
}

// Delete removes the entry with id. Unknown ids are a no-op.
func (s *Store) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read(ctx)
	if err != nil {
		return err
	}

	kept := entries[:0]
	for _, e := range entries {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(entries) {
		return nil
	}
	return s.write(ctx, kept)
}

// Ping checks the substrate connection when supported
func (s *Store) Ping(ctx context.Context) error {
	if p, ok := s.sub.(Pinger); ok {
		return p.Ping(ctx)
	}
	_, err := s.List(ctx)
	return err
}

// Close closes the substrate
func (s *Store) Close() error {
	return s.sub.Close()
}

func (s *Store) read(ctx context.Context) ([]Entry, error) {
	data, err := s.sub.Get(ctx, s.key)
	if errors.Is(err, ErrNotFound) {
		return []Entry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	if len(data) == 0 {
		return []Entry{}, nil
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}

func (s *Store) write(ctx context.Context, entries []Entry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if err := s.sub.Put(ctx, s.key, data); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	return nil
}
