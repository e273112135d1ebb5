package protocol

import "strings"

// Delimiters and reserved frames.
const (
	// CommandSeparator joins commands inside a frame.
	CommandSeparator = "||"

	// ArgumentSeparator joins tokens inside a command.
	ArgumentSeparator = "|"

	// KeepAlive is the frame sent when nothing else is pending.
	KeepAlive = "ping"

	// delimiterSubstitute replaces separator characters that would
	// otherwise corrupt framing.
	delimiterSubstitute = "¦"
)

// Command is one encoded operation: the operation name followed by its
// positional arguments.
type Command []string

// Name returns the operation name, or "" for an empty command.
func (c Command) Name() string {
	if len(c) == 0 {
		return ""
	}
	return c[0]
}

// Args returns the positional arguments.
func (c Command) Args() []string {
	if len(c) < 2 {
		return nil
	}
	return c[1:]
}

// String joins the tokens with ArgumentSeparator. Every token except the
// last has separator characters substituted; the last may keep single
// interior separators, which lets free text such as a font or URL survive
// intact. Empty arguments are written as a single space. The result never
// contains CommandSeparator.
func (c Command) String() string {
	if len(c) == 0 {
		return ""
	}
	var b strings.Builder
	for i, tok := range c {
		if i > 0 {
			b.WriteString(ArgumentSeparator)
		}
		switch {
		case i > 0 && tok == "":
			b.WriteByte(' ')
		case i == len(c)-1:
			b.WriteString(sanitizeFinal(tok))
		default:
			b.WriteString(sanitizeToken(tok))
		}
	}
	return b.String()
}

// sanitizeToken removes every separator character from a token.
func sanitizeToken(tok string) string {
	if !strings.Contains(tok, ArgumentSeparator) {
		return tok
	}
	return strings.ReplaceAll(tok, ArgumentSeparator, delimiterSubstitute)
}

// sanitizeFinal keeps interior single separators but substitutes any that
// would form a CommandSeparator with a neighbour, including the separator
// that precedes the token and the one that may follow it in a frame.
func sanitizeFinal(tok string) string {
	if !strings.Contains(tok, ArgumentSeparator) {
		return tok
	}
	var b strings.Builder
	b.Grow(len(tok) + 4)
	last := len(tok) - 1
	for i := 0; i < len(tok); i++ {
		ch := tok[i]
		if ch != '|' {
			b.WriteByte(ch)
			continue
		}
		adjacent := i == 0 || i == last || tok[i-1] == '|' || tok[i+1] == '|'
		if adjacent {
			b.WriteString(delimiterSubstitute)
		} else {
			b.WriteByte(ch)
		}
	}
	return b.String()
}

// JoinFrame joins encoded commands into one frame.
func JoinFrame(commands []string) string {
	return strings.Join(commands, CommandSeparator)
}

// SplitCommand splits one encoded command into its tokens.
func SplitCommand(s string) Command {
	return Command(strings.Split(s, ArgumentSeparator))
}

// RawEvent is one undecoded command from an inbound frame.
type RawEvent struct {
	Name string
	Args []string
}

// SplitFrame splits an inbound frame into raw events. Empty pieces, such as
// those produced by a trailing separator, are skipped.
func SplitFrame(frame string) []RawEvent {
	if frame == "" {
		return nil
	}
	pieces := strings.Split(frame, CommandSeparator)
	out := make([]RawEvent, 0, len(pieces))
	for _, piece := range pieces {
		if piece == "" {
			continue
		}
		tokens := strings.Split(piece, ArgumentSeparator)
		out = append(out, RawEvent{Name: tokens[0], Args: tokens[1:]})
	}
	return out
}
