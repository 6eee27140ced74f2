package session

import (
	"bufio"
	"encoding/json"
	"os"

	"github.com/k-lindqvist/ctxwatch/internal/models"
)

// codexEvent is a single line of a Codex rollout transcript.
type codexEvent struct {
	Timestamp string          `json:"timestamp"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
}

// codexTokenPayload is the payload of event_msg lines. token_count
// events carry a cumulative total, the last turn's delta, and the
// runtime-reported context window.
type codexTokenPayload struct {
	Type string `json:"type"`
	Info *struct {
		Model              string          `json:"model"`
		ModelContextWindow int64           `json:"model_context_window"`
		TotalTokenUsage    models.RawUsage `json:"total_token_usage"`
		LastTokenUsage     models.RawUsage `json:"last_token_usage"`
	} `json:"info"`
}

type codexTurnContext struct {
	Model string `json:"model"`
}

// readCodexTranscript parses a Codex rollout file. Events carrying a
// cumulative snapshot are tagged so the extractor never adds running
// totals to per-turn deltas; events with only a delta surface it as
// plain message usage.
func readCodexTranscript(path string) ([]*models.SessionMessage, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var messages []*models.SessionMessage

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 1024*1024), maxLineBytes)

	for scanner.Scan() {
		var event codexEvent
		if err := json.Unmarshal(scanner.Bytes(), &event); err != nil {
			continue
		}

		msg := &models.SessionMessage{
			Role:      event.Type,
			Timestamp: parseTimestamp(event.Timestamp),
		}

		switch event.Type {
		case "turn_context":
			var turnCtx codexTurnContext
			if json.Unmarshal(event.Payload, &turnCtx) == nil {
				msg.Model = turnCtx.Model
			}

		case "event_msg":
			var payload codexTokenPayload
			if err := json.Unmarshal(event.Payload, &payload); err != nil {
				continue
			}
			if payload.Type != "token_count" || payload.Info == nil {
				messages = append(messages, msg)
				continue
			}

			info := payload.Info
			msg.Model = info.Model
			meta := &models.CodexMeta{
				Delta:         info.LastTokenUsage,
				ContextWindow: info.ModelContextWindow,
			}
			if info.TotalTokenUsage != nil {
				meta.EventType = models.CumulativeEventType
				meta.Cumulative = info.TotalTokenUsage
			} else if info.LastTokenUsage != nil {
				// Delta-only event: expose it as ordinary message usage so
				// the fallback sum can pick it up.
				msg.Usage = info.LastTokenUsage
			}
			msg.Codex = meta
		}

		messages = append(messages, msg)
	}

	return messages, scanner.Err()
}
