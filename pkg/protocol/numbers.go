package protocol

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

func formatInt(v int) string {
	return strconv.Itoa(v)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatBool(v bool) string {
	return strconv.FormatBool(v)
}

// ParseInt parses an integer argument. Floating-point text is accepted and
// truncated toward zero; values beyond the int range saturate.
func ParseInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	if math.IsNaN(f) {
		return 0, false
	}
	switch {
	case f >= math.MaxInt:
		return math.MaxInt, true
	case f <= math.MinInt:
		return math.MinInt, true
	}
	return int(f), true
}

// ParseFloat parses a real argument.
func ParseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// ParseBool parses a boolean argument: true/false in any case, or 1/0.
func ParseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1":
		return true, true
	case "false", "0":
		return false, true
	default:
		return false, false
	}
}

// argReader walks positional arguments, recording the first failure so the
// caller can check once at the end.
type argReader struct {
	name string
	args []string
	pos  int
	err  *DecodeError
}

func newArgReader(name string, args []string) *argReader {
	return &argReader{name: name, args: args}
}

func (r *argReader) next() (string, int, bool) {
	if r.err != nil {
		return "", 0, false
	}
	if r.pos >= len(r.args) {
		r.err = argCountError(r.name, len(r.args), "more")
		return "", 0, false
	}
	i := r.pos
	r.pos++
	return r.args[i], i, true
}

func (r *argReader) str() string {
	s, _, _ := r.next()
	return s
}

// rest returns the remaining arguments joined back together, for a final
// free-text argument that may contain separators.
func (r *argReader) rest() string {
	if r.err != nil {
		return ""
	}
	if r.pos >= len(r.args) {
		r.err = argCountError(r.name, len(r.args), "more")
		return ""
	}
	s := strings.Join(r.args[r.pos:], ArgumentSeparator)
	r.pos = len(r.args)
	return s
}

func (r *argReader) int() int {
	s, i, ok := r.next()
	if !ok {
		return 0
	}
	n, ok := ParseInt(s)
	if !ok {
		r.err = invalidArgError(r.name, i, s)
	}
	return n
}

func (r *argReader) float() float64 {
	s, i, ok := r.next()
	if !ok {
		return 0
	}
	f, ok := ParseFloat(s)
	if !ok {
		r.err = invalidArgError(r.name, i, s)
	}
	return f
}

// lenientFloat reads a real argument that the renderer may report as
// "undefined" or "NaN" when the browser lacks the field. Such values read
// as 0.
func (r *argReader) lenientFloat() float64 {
	s, _, ok := r.next()
	if !ok {
		return 0
	}
	f, ok := ParseFloat(s)
	if !ok {
		return 0
	}
	return f
}

func (r *argReader) bool() bool {
	s, i, ok := r.next()
	if !ok {
		return false
	}
	b, ok := ParseBool(s)
	if !ok {
		r.err = invalidArgError(r.name, i, s)
	}
	return b
}

// done fails if unread arguments remain.
func (r *argReader) done() error {
	if r.err != nil {
		return r.err
	}
	if r.pos != len(r.args) {
		return argCountError(r.name, len(r.args), strconv.Itoa(r.pos))
	}
	return nil
}
