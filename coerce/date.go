package coerce

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/c360/flatfile/schema"
)

// ErrUnsupportedDateFormat is returned for custom date formats the token
// engine cannot express: a YYYY, MM, or DD token missing or repeated, or a
// separator that is not a single uniform character.
var ErrUnsupportedDateFormat = errors.New("unsupported date format")

// isoLayouts are tried in order by the general calendar parser.
var isoLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// tokenFormat is a compiled positional date format such as "DD/MM/YYYY" or
// "YYYYMMDD". Group i of the pattern corresponds to tokens[i], the token
// order as declared left to right in the format string.
type tokenFormat struct {
	pattern *regexp.Regexp
	tokens  []string
}

var (
	formatCacheMu sync.RWMutex
	formatCache   = map[string]*tokenFormat{}
)

func isISOFormat(format string) bool {
	return format == "" || format == schema.DateFormatISO || format == "YYYY-MM-DD"
}

func parseDate(v, format string) (time.Time, error) {
	if v == "" {
		return time.Time{}, coercionErr(schema.Date, v, "empty value")
	}

	if isISOFormat(format) {
		for _, layout := range isoLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return t.UTC(), nil
			}
		}
		return time.Time{}, coercionErr(schema.Date, v, "not a calendar string")
	}

	tf, err := compileFormat(format)
	if err != nil {
		return time.Time{}, &CoercionError{
			Type:   schema.Date,
			Raw:    v,
			Reason: fmt.Sprintf("unsupported date format %q", format),
			cause:  err,
		}
	}

	match := tf.pattern.FindStringSubmatch(v)
	if match == nil {
		return time.Time{}, coercionErr(schema.Date, v,
			fmt.Sprintf("does not match date format %q", format))
	}

	var year, month, day int
	for i, tok := range tf.tokens {
		// Groups are extracted in format-declared order and assigned to
		// components by token identity, not input order.
		n, _ := strconv.Atoi(match[i+1])
		switch tok {
		case "YYYY":
			year = n
		case "MM":
			month = n
		case "DD":
			day = n
		}
	}

	if year == 0 || month == 0 || day == 0 {
		return time.Time{}, coercionErr(schema.Date, v, "zero year, month, or day")
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), nil
}

// compileFormat derives a positional pattern from a custom token format.
// The format must contain YYYY, MM, and DD exactly once each, joined either
// directly (no separator, as in YYYYMMDD) or by one uniform single-character
// separator (as in DD/MM/YYYY).
func compileFormat(format string) (*tokenFormat, error) {
	formatCacheMu.RLock()
	tf, ok := formatCache[format]
	formatCacheMu.RUnlock()
	if ok {
		return tf, nil
	}

	if strings.Count(format, "YYYY") != 1 ||
		strings.Count(format, "MM") != 1 ||
		strings.Count(format, "DD") != 1 {
		return nil, ErrUnsupportedDateFormat
	}

	type token struct {
		text   string
		offset int
	}
	tokens := []token{
		{"YYYY", strings.Index(format, "YYYY")},
		{"MM", strings.Index(format, "MM")},
		{"DD", strings.Index(format, "DD")},
	}
	// Order tokens as they appear left to right in the format string.
	for i := 0; i < len(tokens); i++ {
		for j := i + 1; j < len(tokens); j++ {
			if tokens[j].offset < tokens[i].offset {
				tokens[i], tokens[j] = tokens[j], tokens[i]
			}
		}
	}

	// The separator is whatever remains once the tokens are removed: either
	// nothing, or the same single character between each adjacent pair.
	sep := ""
	if len(format) != len("YYYYMMDD") {
		first := tokens[0].text
		gap := format[tokens[0].offset+len(first) : tokens[1].offset]
		if len(gap) != 1 {
			return nil, ErrUnsupportedDateFormat
		}
		sep = gap
	}
	names := make([]string, len(tokens))
	for i, tok := range tokens {
		names[i] = tok.text
	}
	if strings.Join(names, sep) != format {
		return nil, ErrUnsupportedDateFormat
	}

	var b strings.Builder
	b.WriteString("^")
	for i, tok := range tokens {
		if i > 0 {
			b.WriteString(regexp.QuoteMeta(sep))
		}
		if tok.text == "YYYY" {
			b.WriteString(`(\d{4})`)
		} else {
			b.WriteString(`(\d{2})`)
		}
	}
	b.WriteString("$")

	pattern, err := regexp.Compile(b.String())
	if err != nil {
		return nil, ErrUnsupportedDateFormat
	}
	tf = &tokenFormat{pattern: pattern, tokens: names}

	formatCacheMu.Lock()
	formatCache[format] = tf
	formatCacheMu.Unlock()
	return tf, nil
}

// formatDate renders a date for the serialize direction. The ISO format (or
// none) renders the full UTC calendar-and-time string; any other format has
// its YYYY, MM, and DD tokens substituted with zero-padded UTC components.
func formatDate(t time.Time, format string) string {
	u := t.UTC()
	if format == "" || format == schema.DateFormatISO {
		return u.Format(time.RFC3339)
	}
	r := strings.NewReplacer(
		"YYYY", fmt.Sprintf("%04d", u.Year()),
		"MM", fmt.Sprintf("%02d", int(u.Month())),
		"DD", fmt.Sprintf("%02d", u.Day()),
	)
	return r.Replace(format)
}
