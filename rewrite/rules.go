package rewrite

import (
	"strings"

	"github.com/rubiojr/cusplit/scanner"
)

// Builtin rule names, in their default priority order.
const (
	RuleFprintf        = "fprintf"
	RuleFprintfPartial = "fprintf-partial"
	RuleMalloc         = "malloc"
	RuleCalloc         = "calloc"
	RuleExit           = "exit"
)

// RuleNames lists every builtin rule in default priority order.
var RuleNames = []string{RuleFprintf, RuleFprintfPartial, RuleMalloc, RuleCalloc, RuleExit}

// Streams are the first arguments that mark an fprintf as console output.
var Streams = map[string]bool{"stderr": true, "stdout": true}

var builtin = map[string]Rule{
	RuleFprintf: {
		Name: RuleFprintf,
		Match: func(line string) bool {
			for _, c := range fprintfCalls(line) {
				if c.complete() {
					return true
				}
			}
			return false
		},
		Apply: func(line string) string { return rewriteFprintf(line, true) },
	},
	RuleFprintfPartial: {
		Name: RuleFprintfPartial,
		Match: func(line string) bool {
			for _, c := range fprintfCalls(line) {
				if c.partial() {
					return true
				}
			}
			return false
		},
		Apply: func(line string) string { return rewriteFprintf(line, false) },
	},
	RuleMalloc: renameRule(RuleMalloc, "malloc", "swappablemalloc"),
	RuleCalloc: renameRule(RuleCalloc, "calloc", "swappablecalloc"),
	RuleExit: {
		Name: RuleExit,
		Match: func(line string) bool {
			_, _, ok := findExit(line)
			return ok
		},
		Apply: func(line string) string {
			start, end, _ := findExit(line)
			return line[:start] + "__trap()" + line[end:]
		},
	},
}

// Default returns the full builtin table in priority order.
func Default() Table {
	t, _ := Lookup(RuleNames)
	return t
}

// renameRule renames every call of from to to; arguments are untouched.
func renameRule(name, from, to string) Rule {
	return Rule{
		Name: name,
		Match: func(line string) bool {
			start, _ := scanner.FindCall(line, from)
			return start >= 0
		},
		Apply: func(line string) string {
			var sb strings.Builder
			for {
				start, _ := scanner.FindCall(line, from)
				if start < 0 {
					break
				}
				sb.WriteString(line[:start])
				sb.WriteString(to)
				line = line[start+len(from):]
			}
			sb.WriteString(line)
			return sb.String()
		},
	}
}

// fprintfCall describes an fprintf call head found on a line.
type fprintfCall struct {
	start  int    // offset of "fprintf"
	comma  int    // offset of the first argument separator, or -1
	closed bool   // the argument list closes on this line
	close  int    // offset of the closing paren when closed
	nargs  int    // number of arguments when closed
	rest   string // arguments after the stream, verbatim, when closed
}

func (c fprintfCall) complete() bool { return c.closed && c.nargs >= 2 }

func (c fprintfCall) partial() bool { return !c.closed && c.comma > 0 }

// fprintfCalls returns the fprintf calls on line whose first argument is a
// console stream, in order. Calls nested in the arguments of another call
// are not reported.
func fprintfCalls(line string) []fprintfCall {
	var calls []fprintfCall
	base := 0
	for base < len(line) {
		c, next, ok := parseFprintf(line, base)
		if ok {
			calls = append(calls, c)
		}
		if next < 0 {
			break
		}
		base = next
	}
	return calls
}

// parseFprintf parses the first fprintf call at or after from. It returns
// the offset where scanning should resume, or -1 when there is nothing left
// to scan; ok reports whether the call writes to a console stream.
func parseFprintf(line string, from int) (c fprintfCall, next int, ok bool) {
	start, open := scanner.FindCall(line[from:], "fprintf")
	if start < 0 {
		return fprintfCall{}, -1, false
	}
	start, open = from+start, from+open
	c = fprintfCall{start: start, comma: -1}
	args := line[open+1:]
	next = -1
	if end := scanner.FindMatchingClose(line, open); end >= 0 {
		c.closed = true
		c.close = end
		args = line[open+1 : end]
		next = end + 1
	}
	parts := scanner.SplitTopLevel(args)
	if !Streams[strings.TrimSpace(parts[0])] {
		return c, next, false
	}
	if len(parts) > 1 {
		c.comma = open + 1 + len(parts[0])
	}
	if c.closed {
		c.nargs = len(parts)
		if c.nargs >= 2 {
			c.rest = strings.TrimLeft(args[len(parts[0])+1:], " \t")
		}
	}
	return c, next, true
}

// rewriteFprintf turns console fprintf calls on line into printf calls. A
// trailing call whose arguments continue on the next line is rewritten too;
// complete calls are rewritten only when full is set.
func rewriteFprintf(line string, full bool) string {
	calls := fprintfCalls(line)
	for i := len(calls) - 1; i >= 0; i-- {
		c := calls[i]
		switch {
		case full && c.complete():
			line = line[:c.start] + "printf(" + c.rest + line[c.close:]
		case c.partial():
			line = line[:c.start] + "printf(" + strings.TrimLeft(line[c.comma+1:], " \t")
		}
	}
	return line
}

// findExit locates exit(1) in code and returns the span to replace.
func findExit(line string) (int, int, bool) {
	rest := line
	base := 0
	for {
		start, open := scanner.FindCall(rest, "exit")
		if start < 0 {
			return 0, 0, false
		}
		end := scanner.FindMatchingClose(rest, open)
		if end >= 0 && strings.TrimSpace(rest[open+1:end]) == "1" {
			return base + start, base + end + 1, true
		}
		base += open + 1
		rest = rest[open+1:]
	}
}
