package loan

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Formatter renders raw loan data into the reply text. The default renderer
// produces a plain key/value summary; hosts can inject a richer one (for
// example an LLM-backed formatter) without touching the lookup flow.
type Formatter interface {
	Format(ctx context.Context, data json.RawMessage) (string, error)
}

const replyNoLoanData = "I couldn't find any active loan information. If you believe this is incorrect, please contact support."

// PlainFormatter renders the loan record as sorted "Label: value" lines.
type PlainFormatter struct{}

func (PlainFormatter) Format(_ context.Context, data json.RawMessage) (string, error) {
	var fields map[string]any
	if len(data) > 0 && string(data) != "null" {
		if err := json.Unmarshal(data, &fields); err != nil {
			return "", fmt.Errorf("decode loan data: %w", err)
		}
	}
	if len(fields) == 0 {
		return replyNoLoanData, nil
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("Here's your loan information:\n")
	for _, k := range keys {
		fmt.Fprintf(&b, "%s: %s\n", humanizeKey(k), renderValue(fields[k]))
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// humanizeKey turns snake_case or camelCase field names into title-cased
// labels: "outstanding_balance" and "outstandingBalance" both become
// "Outstanding Balance".
func humanizeKey(key string) string {
	var words []string
	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			words = append(words, current.String())
			current.Reset()
		}
	}
	for _, r := range key {
		switch {
		case r == '_' || r == '-' || r == ' ':
			flush()
		case r >= 'A' && r <= 'Z':
			flush()
			current.WriteRune(r)
		default:
			current.WriteRune(r)
		}
	}
	flush()
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func renderValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "-"
	case string:
		if val == "" {
			return "-"
		}
		return val
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%.2f", val)
	case bool:
		if val {
			return "yes"
		}
		return "no"
	default:
		raw, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(raw)
	}
}
