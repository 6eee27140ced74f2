// Package session discovers and reads local assistant session
// transcripts and keeps them synchronized with the filesystem.
package session

import (
	"bufio"
	"encoding/json"
	"os"
	"time"

	"github.com/k-lindqvist/ctxwatch/internal/models"
)

// Transcript lines can get large once tool output is embedded.
const maxLineBytes = 10 * 1024 * 1024

// claudeEntry is a single line of a Claude Code JSONL transcript.
// Gemini CLI session logs use the same nesting, so this reader serves
// both generic engines.
type claudeEntry struct {
	Timestamp string          `json:"timestamp"`
	Type      string          `json:"type"`
	Usage     models.RawUsage `json:"usage"`
	Message   *struct {
		Model string          `json:"model"`
		Usage models.RawUsage `json:"usage"`
	} `json:"message"`
}

// readGenericTranscript parses a Claude/Gemini style transcript into
// ordered session messages. Malformed lines are skipped, never fatal.
func readGenericTranscript(path string) ([]*models.SessionMessage, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var messages []*models.SessionMessage

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 1024*1024), maxLineBytes)

	for scanner.Scan() {
		var entry claudeEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			continue
		}

		msg := &models.SessionMessage{
			Role:      entry.Type,
			Timestamp: parseTimestamp(entry.Timestamp),
			Usage:     entry.Usage,
		}
		if entry.Message != nil {
			msg.Message = &models.MessageBody{
				Model: entry.Message.Model,
				Usage: entry.Message.Usage,
			}
		}
		messages = append(messages, msg)
	}

	return messages, scanner.Err()
}

func parseTimestamp(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts
	}
	return time.Time{}
}
