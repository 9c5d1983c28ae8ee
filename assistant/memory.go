package assistant

import "github.com/gauss-analytics/gauss-assistant/models"

// ConversationLog is the append-only conversation memory of one chat
// session. The session controller is the sole writer; the pipeline only
// reads it. It grows unbounded until an explicit reset.
type ConversationLog struct {
	turns []models.ConversationTurn
}

func NewConversationLog(turns ...models.ConversationTurn) *ConversationLog {
	log := &ConversationLog{}
	log.turns = append(log.turns, turns...)
	return log
}

// Append records one turn. Turns are immutable once appended.
func (l *ConversationLog) Append(role, text string) {
	l.turns = append(l.turns, models.ConversationTurn{Role: role, Text: text})
}

// Turns returns a copy of the log in append order.
func (l *ConversationLog) Turns() []models.ConversationTurn {
	out := make([]models.ConversationTurn, len(l.turns))
	copy(out, l.turns)
	return out
}

func (l *ConversationLog) Len() int { return len(l.turns) }

// Since returns a copy of the turns appended after position n, for
// persisting just the delta of a completed exchange.
func (l *ConversationLog) Since(n int) []models.ConversationTurn {
	if n < 0 || n >= len(l.turns) {
		return nil
	}
	out := make([]models.ConversationTurn, len(l.turns)-n)
	copy(out, l.turns[n:])
	return out
}

// Clear empties the log in bulk (explicit user reset).
func (l *ConversationLog) Clear() { l.turns = nil }
