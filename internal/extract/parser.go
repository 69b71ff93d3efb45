package extract

import (
	"encoding/json"
	"fmt"

	"vittrack/internal/core"
)

// parseExpenses validates the model's JSON payload. The contract is strict:
// a top-level object with an "expenses" array, every element carrying
// amount, description and category. One malformed element rejects the whole
// batch; there is no partial success.
func parseExpenses(payload []byte) ([]core.CandidateExpense, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, fmt.Errorf("%w: response is not a JSON object: %v", ErrInvalidResponse, err)
	}

	rawList, ok := envelope["expenses"]
	if !ok {
		return nil, fmt.Errorf("%w: response missing 'expenses' key", ErrInvalidResponse)
	}

	var items []json.RawMessage
	if err := json.Unmarshal(rawList, &items); err != nil {
		return nil, fmt.Errorf("%w: 'expenses' is not an array", ErrInvalidResponse)
	}

	candidates := make([]core.CandidateExpense, 0, len(items))
	for i, item := range items {
		var fields struct {
			Amount      *float64 `json:"amount"`
			Description *string  `json:"description"`
			Category    *string  `json:"category"`
		}
		if err := json.Unmarshal(item, &fields); err != nil {
			return nil, fmt.Errorf("%w: expense %d is not an object", ErrInvalidResponse, i)
		}
		if fields.Amount == nil || fields.Description == nil || fields.Category == nil {
			return nil, fmt.Errorf("%w: expense %d missing required keys", ErrInvalidResponse, i)
		}

		candidate := core.CandidateExpense{
			Amount:      *fields.Amount,
			Description: *fields.Description,
			Category:    *fields.Category,
		}
		if err := candidate.Validate(); err != nil {
			return nil, fmt.Errorf("%w: expense %d: %v", ErrInvalidResponse, i, err)
		}
		candidates = append(candidates, candidate)
	}

	return candidates, nil
}
