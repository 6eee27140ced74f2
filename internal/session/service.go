package session

import (
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/k-lindqvist/ctxwatch/internal/logger"
	"github.com/k-lindqvist/ctxwatch/internal/models"
)

// Event represents a session service event.
type Event struct {
	Type    EventType
	Session *models.Session
	Error   error
}

// EventType defines the type of session event.
type EventType int

const (
	// EventSessionUpdated indicates a session appeared or gained messages.
	EventSessionUpdated EventType = iota
	// EventSessionRemoved indicates a session's transcript disappeared.
	EventSessionRemoved
	// EventError indicates a watcher or parse failure.
	EventError
)

// Config holds configuration for the session service.
type Config struct {
	// EngineDirs maps engine tags to transcript directories.
	EngineDirs map[string]string
	// PollInterval is the rescan fallback cadence. File events drive the
	// fast path; the poll tick recovers anything the watcher missed.
	PollInterval time.Duration
}

const defaultPollInterval = 5 * time.Second

// Service keeps an in-memory view of local assistant sessions in sync
// with their transcript files using fsnotify plus a polling fallback.
type Service struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
	config   Config
	watcher  *fsnotify.Watcher
	events   chan Event
	stopChan chan struct{}
	dirty    chan struct{}
}

// New creates a session service and starts the sync loop.
func New(config Config) (*Service, error) {
	if config.PollInterval <= 0 {
		config.PollInterval = defaultPollInterval
	}

	s := &Service{
		sessions: make(map[string]*models.Session),
		config:   config,
		events:   make(chan Event, 100),
		stopChan: make(chan struct{}),
		dirty:    make(chan struct{}, 1),
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	s.watcher = watcher

	for _, dir := range config.EngineDirs {
		if dir == "" {
			continue
		}
		// Directories may not exist until the engine writes its first
		// session; the poll tick picks those up later.
		if err := watcher.Add(dir); err != nil {
			logger.Debug("cannot watch transcript dir", "dir", dir, "error", err)
		}
	}

	s.Rescan()
	go s.syncLoop()

	return s, nil
}

// Events returns the event channel.
func (s *Service) Events() <-chan Event {
	return s.events
}

// Sessions returns all known sessions, most recently updated first.
func (s *Service) Sessions() []*models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]*models.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].Updated.After(sessions[j].Updated)
	})
	return sessions
}

// Get returns a session by ID, or nil.
func (s *Service) Get(id string) *models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[id]
}

// Count returns the number of known sessions.
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Rescan walks every configured directory and reconciles the in-memory
// view, emitting an event per changed or vanished session.
func (s *Service) Rescan() {
	seen := make(map[string]bool)

	for tag, dir := range s.config.EngineDirs {
		engine := models.ParseEngine(tag)
		for _, ref := range discover(dir, engine) {
			seen[ref.SessionID] = true
			s.reconcile(ref)
		}
	}

	// Drop sessions whose transcripts vanished (pruned by the engine).
	s.mu.Lock()
	var removed []*models.Session
	for id, sess := range s.sessions {
		if !seen[id] {
			removed = append(removed, sess)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range removed {
		s.sendEvent(Event{Type: EventSessionRemoved, Session: sess})
	}
}

// reconcile re-parses one transcript if it changed since last seen.
func (s *Service) reconcile(ref transcriptRef) {
	s.mu.RLock()
	existing := s.sessions[ref.SessionID]
	s.mu.RUnlock()

	if existing != nil && !ref.ModTime.After(existing.Updated) {
		return
	}

	messages, err := readTranscript(ref.Path, ref.Engine)
	if err != nil {
		s.sendEvent(Event{Type: EventError, Error: err})
		return
	}

	sess := &models.Session{
		ID:       ref.SessionID,
		Engine:   ref.Engine,
		Path:     ref.Path,
		Messages: messages,
		Updated:  ref.ModTime,
	}
	sess.Model = sess.LastModel()

	s.mu.Lock()
	s.sessions[ref.SessionID] = sess
	s.mu.Unlock()

	s.sendEvent(Event{Type: EventSessionUpdated, Session: sess})
}

// syncLoop is the hybrid sync: fsnotify events trigger a debounced
// rescan, and the poll ticker retries anything a lost event left stale.
func (s *Service) syncLoop() {
	ticker := time.NewTicker(s.config.PollInterval)
	defer ticker.Stop()

	debounce := time.NewTimer(0)
	if !debounce.Stop() {
		<-debounce.C
	}

	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
				debounce.Reset(250 * time.Millisecond)
			}

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.sendEvent(Event{Type: EventError, Error: err})

		case <-debounce.C:
			s.Rescan()

		case <-ticker.C:
			s.Rescan()

		case <-s.stopChan:
			return
		}
	}
}

// sendEvent sends an event without blocking; when the channel is full
// the oldest event is dropped in favor of the new one.
func (s *Service) sendEvent(event Event) {
	select {
	case s.events <- event:
	default:
		select {
		case <-s.events:
		default:
		}
		select {
		case s.events <- event:
		default:
		}
	}
}

// Close stops the sync loop and the file watcher.
func (s *Service) Close() error {
	close(s.stopChan)
	return s.watcher.Close()
}
