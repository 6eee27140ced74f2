package usage

import "github.com/k-lindqvist/ctxwatch/internal/models"

// messageUsage returns the raw usage payload attached to a message.
// A payload directly on the message wins over one nested in the body.
func messageUsage(msg *models.SessionMessage) (models.RawUsage, bool) {
	if msg == nil {
		return nil, false
	}
	if msg.Usage != nil {
		return msg.Usage, true
	}
	if msg.Message != nil && msg.Message.Usage != nil {
		return msg.Message.Usage, true
	}
	return nil, false
}

// LatestUsage scans the transcript backward and returns the normalized
// usage of the most recent message whose payload has any non-zero
// field. This is the generic policy: Claude and Gemini report snapshot
// usage per turn, so the newest reading describes current occupancy.
func LatestUsage(messages []*models.SessionMessage) (models.NormalizedUsage, bool) {
	for i := len(messages) - 1; i >= 0; i-- {
		raw, ok := messageUsage(messages[i])
		if !ok {
			continue
		}
		if norm := Normalize(raw); !norm.IsZero() {
			return norm, true
		}
	}
	return models.NormalizedUsage{}, false
}

// LatestCumulative scans backward for the most recent Codex cumulative
// snapshot with any field above zero. A snapshot is authoritative: it
// already accounts for every prior turn.
func LatestCumulative(messages []*models.SessionMessage) (models.NormalizedUsage, bool) {
	for i := len(messages) - 1; i >= 0; i-- {
		msg := messages[i]
		if msg == nil || msg.Codex == nil || msg.Codex.Cumulative == nil {
			continue
		}
		if norm := Normalize(msg.Codex.Cumulative); !norm.IsZero() {
			return norm, true
		}
	}
	return models.NormalizedUsage{}, false
}

// SumDeltas walks the transcript forward and sums the usage of every
// message carrying a payload, skipping messages tagged as cumulative
// updates — those values are already running totals and adding them
// again would overstate consumption.
func SumDeltas(messages []*models.SessionMessage) (models.NormalizedUsage, bool) {
	var total models.NormalizedUsage
	found := false
	for _, msg := range messages {
		if msg != nil && msg.IsCumulativeUpdate() {
			continue
		}
		raw, ok := messageUsage(msg)
		if !ok {
			continue
		}
		total = total.Add(Normalize(raw))
		found = true
	}
	return total, found
}

// Extract locates the usage reading that best represents current
// context occupancy under the engine's reporting semantics. Codex mixes
// per-turn deltas and periodic running totals on one channel, so it
// gets the two-phase treatment; everything else takes the most recent
// snapshot.
func Extract(messages []*models.SessionMessage, engine models.Engine) (models.NormalizedUsage, bool) {
	if engine != models.EngineCodex {
		return LatestUsage(messages)
	}
	if cumulative, ok := LatestCumulative(messages); ok {
		return cumulative, true
	}
	return SumDeltas(messages)
}
