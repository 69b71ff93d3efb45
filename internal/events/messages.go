package events

import (
	"encoding/json"
	"time"
)

// Expense creation sources.
const (
	SourceVoice  = "voice"
	SourceManual = "manual"
)

// ExpensesCreatedMessage announces a committed batch of expenses. Consumers
// fetch rows from the database, so the payload carries only identifiers.
type ExpensesCreatedMessage struct {
	UserID     int64     `json:"user_id"`
	ExpenseIDs []int64   `json:"expense_ids"`
	Source     string    `json:"source"`
	Timestamp  time.Time `json:"timestamp"`
}

func NewExpensesCreatedMessage(userID int64, expenseIDs []int64, source string) *ExpensesCreatedMessage {
	return &ExpensesCreatedMessage{
		UserID:     userID,
		ExpenseIDs: expenseIDs,
		Source:     source,
		Timestamp:  time.Now(),
	}
}

func (m *ExpensesCreatedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ExpensesCreatedMessageFromJSON(data []byte) (*ExpensesCreatedMessage, error) {
	var msg ExpensesCreatedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
