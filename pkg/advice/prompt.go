package advice

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Role markers of the chat template the model was tuned on.
const (
	MarkerSystem    = "<|system|>"
	MarkerUser      = "<|user|>"
	MarkerAssistant = "<|assistant|>"
	EndOfTurn       = "</s>"
)

const (
	systemInstruction = "You are a helpful financial advisor. Use the following user context to give personalized advice."
	notAvailable      = "N/A"
)

var markerStripper = strings.NewReplacer(MarkerSystem, "", MarkerUser, "", MarkerAssistant, "", EndOfTurn, "")

// PromptBuilder renders the single-string prompt sent to the model.
type PromptBuilder struct {
	DefaultCurrency string
	// SanitizeMarkers removes role markers from user-supplied text. Off by default,
	// in which case a query can forge its own turns.
	SanitizeMarkers bool
}

func (b PromptBuilder) Build(req Request) string {
	var sb strings.Builder
	sb.WriteString(MarkerSystem)
	sb.WriteString("\n")
	sb.WriteString(systemInstruction)
	sb.WriteString("\n")
	sb.WriteString(b.ContextSentence(req.UserData))
	sb.WriteString("\n")
	sb.WriteString(EndOfTurn)
	sb.WriteString("\n")
	sb.WriteString(MarkerUser)
	sb.WriteString("\n")
	sb.WriteString(b.clean(req.Query))
	sb.WriteString("\n")
	sb.WriteString(EndOfTurn)
	sb.WriteString("\n")
	sb.WriteString(MarkerAssistant)
	sb.WriteString("\n")
	return sb.String()
}

// ContextSentence summarizes userData, or returns "" when there is none.
func (b PromptBuilder) ContextSentence(userData map[string]any) string {
	if len(userData) == 0 {
		return ""
	}
	income := b.field(userData, KeyMonthlyIncome, notAvailable)
	expenses := b.field(userData, KeyTotalExpenses, notAvailable)
	savings := b.field(userData, KeySavings, notAvailable)
	currency := b.field(userData, KeyCurrency, b.DefaultCurrency)
	return fmt.Sprintf(
		"Context: The user has a monthly income of %s %s, expenses of %s %s, and savings of %s %s. ",
		currency, income, currency, expenses, currency, savings,
	)
}

func (b PromptBuilder) field(userData map[string]any, key, fallback string) string {
	v, ok := userData[key]
	if !ok || v == nil {
		return fallback
	}
	return b.clean(renderValue(v))
}

func (b PromptBuilder) clean(s string) string {
	if !b.SanitizeMarkers {
		return s
	}
	// stripping can join fragments into a new marker, so repeat until stable
	for {
		next := markerStripper.Replace(s)
		if next == s {
			return s
		}
		s = next
	}
}

func renderValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		d, err := decimal.NewFromString(t.String())
		if err != nil {
			return t.String()
		}
		return d.String()
	case float64:
		return decimal.NewFromFloat(t).String()
	case bool:
		return strconv.FormatBool(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

// ExtractAssistant keeps the text after the last assistant marker. With
// trimTrailingTurn it also cuts at the next role marker, dropping any turn the
// model went on to invent.
func ExtractAssistant(full string, trimTrailingTurn bool) string {
	out := full
	if i := strings.LastIndex(full, MarkerAssistant); i >= 0 {
		out = full[i+len(MarkerAssistant):]
	}
	out = strings.TrimSpace(out)
	if !trimTrailingTurn {
		return out
	}
	cut := len(out)
	for _, m := range []string{MarkerSystem, MarkerUser, EndOfTurn} {
		if i := strings.Index(out, m); i >= 0 && i < cut {
			cut = i
		}
	}
	return strings.TrimSpace(out[:cut])
}
