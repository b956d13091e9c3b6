package advice

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// Error kinds of the advice contract. Handlers map them to fixed messages.
var (
	ErrModelUnavailable = errors.New("model is not available")
	ErrBadRequest       = errors.New("query not provided")
	ErrGenerationFailed = errors.New("failed to generate response")
)

// Context keys accepted inside userData.
const (
	KeyMonthlyIncome = "monthly_income"
	KeyTotalExpenses = "total_expenses"
	KeySavings       = "savings"
	KeyCurrency      = "currency"
)

// Request is one advice call. UserData keeps numbers as json.Number so they
// render exactly as sent.
type Request struct {
	Query       string
	UserData    map[string]any
	RawUserData json.RawMessage
}

// Result is a successful generation.
type Result struct {
	Response string
	Prompt   string
	Model    string
	Duration time.Duration
}

// ParseRequest decodes a request body. A missing body, a non-object body or a
// missing, non-string or blank query are all ErrBadRequest. A userData value that
// is not an object is ignored.
func ParseRequest(body []byte) (Request, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return Request{}, ErrBadRequest
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		return Request{}, ErrBadRequest
	}
	rawQuery, ok := fields["query"]
	if !ok {
		return Request{}, ErrBadRequest
	}
	var query string
	if err := json.Unmarshal(rawQuery, &query); err != nil || strings.TrimSpace(query) == "" {
		return Request{}, ErrBadRequest
	}

	req := Request{Query: query}
	if raw, ok := fields["userData"]; ok {
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		var ud map[string]any
		if err := dec.Decode(&ud); err == nil && len(ud) > 0 {
			req.UserData = ud
			req.RawUserData = raw
		}
	}
	return req, nil
}
