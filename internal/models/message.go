// Package models defines data structures and domain types.
package models

import "time"

// RawUsage is a usage payload as decoded from a transcript, before
// normalization. Engines disagree on field names and nesting, so values
// are kept as loosely typed JSON; usage.Normalize is the single authority
// that resolves aliases and coerces garbage to zero.
type RawUsage map[string]any

// MessageBody is the nested message object some engines wrap their
// usage report in.
type MessageBody struct {
	Model string   `json:"model,omitempty"`
	Usage RawUsage `json:"usage,omitempty"`
}

// CodexMeta is the Codex side-channel metadata attached to token_count
// events. Cumulative carries a running-total snapshot; Delta carries the
// cost of the last turn only. ContextWindow, when positive, is the
// runtime-reported effective window and overrides the static table.
type CodexMeta struct {
	EventType     string   `json:"event_type,omitempty"`
	Cumulative    RawUsage `json:"total_token_usage,omitempty"`
	Delta         RawUsage `json:"last_token_usage,omitempty"`
	ContextWindow int64    `json:"model_context_window,omitempty"`
}

// CumulativeEventType tags Codex messages whose usage fields are
// running totals rather than per-turn deltas.
const CumulativeEventType = "token_count"

// SessionMessage is one engine-tagged event in a session transcript.
// The usage logic only ever reads these; the transcript reader owns them.
type SessionMessage struct {
	Timestamp time.Time
	Role      string
	Usage     RawUsage     // usage attached directly to the message
	Message   *MessageBody // nested body that may carry its own usage
	Codex     *CodexMeta   // Codex side-channel, nil for other engines
	Model     string
}

// IsCumulativeUpdate reports whether this message's usage fields are
// running totals. Summing those alongside per-turn deltas would count
// the same tokens twice.
func (m *SessionMessage) IsCumulativeUpdate() bool {
	return m.Codex != nil && m.Codex.EventType == CumulativeEventType
}

// Session is an ordered, read-only transcript of one assistant session.
type Session struct {
	ID       string
	Engine   Engine
	Model    string
	Path     string
	Messages []*SessionMessage
	Updated  time.Time
}

// LastModel returns the most recently reported model identifier, or the
// session-level model when no message carries one.
func (s *Session) LastModel() string {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		msg := s.Messages[i]
		if msg.Model != "" {
			return msg.Model
		}
		if msg.Message != nil && msg.Message.Model != "" {
			return msg.Message.Model
		}
	}
	return s.Model
}
