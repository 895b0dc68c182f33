package fields

import (
	"encoding/json"
	"fmt"
	"math"
	"net/mail"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	msgInvalidOption = "not a valid option"
	msgNotString     = "must be a string"
	msgNotInteger    = "must be a whole number"
	msgNotNumber     = "must be a number"
	msgNotBoolean    = "must be true or false"
	msgNotDate       = "must be a date (YYYY-MM-DD)"
	msgNotEmail      = "must be a valid email address"
	msgNotList       = "must be a list of values"
	msgNoMatch       = "has an invalid format"
)

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	time.RFC3339,
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
}

// coerce normalizes v to the field kind and checks constraints.
// It returns the normalized value, or a non-empty message on failure.
func (f Field) coerce(v any) (any, string) {
	switch f.Kind {
	case Integer:
		n, ok := toInteger(v)
		if !ok {
			return nil, msgNotInteger
		}
		if msg := f.checkRange(float64(n)); msg != "" {
			return nil, msg
		}
		return n, ""
	case Number:
		n, ok := toNumber(v)
		if !ok {
			return nil, msgNotNumber
		}
		if msg := f.checkRange(n); msg != "" {
			return nil, msg
		}
		return n, ""
	case Boolean:
		b, ok := toBoolean(v)
		if !ok {
			return nil, msgNotBoolean
		}
		return b, ""
	case Enum:
		s, ok := toText(v)
		if !ok {
			return nil, msgInvalidOption
		}
		for _, opt := range f.Options {
			if strings.EqualFold(strings.TrimSpace(s), opt) {
				return opt, ""
			}
		}
		return nil, msgInvalidOption
	case Date:
		s, ok := v.(string)
		if !ok {
			return nil, msgNotDate
		}
		s = strings.TrimSpace(s)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.Format("2006-01-02"), ""
			}
		}
		return nil, msgNotDate
	case Email:
		s, ok := v.(string)
		if !ok {
			return nil, msgNotEmail
		}
		addr, err := mail.ParseAddress(strings.TrimSpace(s))
		if err != nil || !strings.Contains(addr.Address, ".") {
			return nil, msgNotEmail
		}
		return strings.ToLower(addr.Address), ""
	case List:
		items, ok := toList(v)
		if !ok {
			return nil, msgNotList
		}
		if msg := f.checkLength(len(items), "items"); msg != "" {
			return nil, msg
		}
		return items, ""
	default:
		s, ok := toText(v)
		if !ok {
			return nil, msgNotString
		}
		s = strings.TrimSpace(s)
		if msg := f.checkLength(utf8.RuneCountInString(s), "characters"); msg != "" {
			return nil, msg
		}
		if f.pattern != nil && !f.pattern.MatchString(s) {
			return nil, msgNoMatch
		}
		return s, ""
	}
}

func (f Field) checkRange(n float64) string {
	if f.Min != nil && n < *f.Min {
		return fmt.Sprintf("must be at least %s", formatNumber(*f.Min))
	}
	if f.Max != nil && n > *f.Max {
		return fmt.Sprintf("must be at most %s", formatNumber(*f.Max))
	}
	return ""
}

func (f Field) checkLength(n int, unit string) string {
	if f.MinLength > 0 && n < f.MinLength {
		return fmt.Sprintf("must have at least %d %s", f.MinLength, unit)
	}
	if f.MaxLength > 0 && n > f.MaxLength {
		return fmt.Sprintf("must have at most %d %s", f.MaxLength, unit)
	}
	return ""
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// toText accepts strings and scalar values a model may emit unquoted.
func toText(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case json.Number:
		return val.String(), true
	case float64:
		return formatNumber(val), true
	case int:
		return strconv.Itoa(val), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case bool:
		return strconv.FormatBool(val), true
	default:
		return "", false
	}
}

func toInteger(v any) (int64, bool) {
	switch val := v.(type) {
	case int:
		return int64(val), true
	case int64:
		return val, true
	case int32:
		return int64(val), true
	case float64:
		return floatToInteger(val)
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return n, true
		}
		if f, err := val.Float64(); err == nil {
			return floatToInteger(f)
		}
		return 0, false
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(val), "_", "")
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return floatToInteger(f)
		}
		return 0, false
	default:
		return 0, false
	}
}

// floatToInteger rejects fractions and values outside the int64 range.
func floatToInteger(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

func toNumber(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, !math.IsNaN(val) && !math.IsInf(val, 0)
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case json.Number:
		f, err := val.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func toBoolean(v any) (bool, bool) {
	switch val := v.(type) {
	case bool:
		return val, true
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "true", "yes", "y", "1", "on":
			return true, true
		case "false", "no", "n", "0", "off":
			return false, true
		}
	case float64:
		if val == 0 || val == 1 {
			return val == 1, true
		}
	case json.Number:
		switch val.String() {
		case "0", "1":
			return val.String() == "1", true
		}
	}
	return false, false
}

func toList(v any) ([]string, bool) {
	switch val := v.(type) {
	case []string:
		return trimItems(val), true
	case []any:
		items := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := toText(item)
			if !ok {
				return nil, false
			}
			items = append(items, s)
		}
		return trimItems(items), true
	case string:
		return trimItems(strings.Split(val, ",")), true
	default:
		return nil, false
	}
}

func trimItems(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := strings.TrimSpace(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}
