package domain

import (
	"encoding/json"
	"strings"
)

// Role роль участника диалога
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ConversationTurn одна реплика истории, которую присылает клиент
type ConversationTurn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Valid проверяет роль и непустое содержимое
func (t ConversationTurn) Valid() bool {
	switch t.Role {
	case RoleSystem, RoleUser, RoleAssistant:
		return strings.TrimSpace(t.Content) != ""
	default:
		return false
	}
}

// ParseTurns разбирает историю диалога. Некорректные элементы
// (не объект, нет роли, чужая роль, пустой content) молча отбрасываются.
func ParseTurns(raw []json.RawMessage) []ConversationTurn {
	turns := make([]ConversationTurn, 0, len(raw))
	for _, item := range raw {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(item, &fields); err != nil {
			continue
		}

		var turn ConversationTurn
		if err := json.Unmarshal(fields["role"], &turn.Role); err != nil {
			continue
		}
		if err := json.Unmarshal(fields["content"], &turn.Content); err != nil {
			continue
		}
		if turn.Valid() {
			turns = append(turns, turn)
		}
	}
	return turns
}

// FilterTurns оставляет только корректные реплики
func FilterTurns(turns []ConversationTurn) []ConversationTurn {
	out := make([]ConversationTurn, 0, len(turns))
	for _, t := range turns {
		if t.Valid() {
			out = append(out, t)
		}
	}
	return out
}
