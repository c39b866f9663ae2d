package protocol

import (
	"bufio"
	"io"
	"regexp"
	"strings"
	"time"

	"lazydotnet/internal/domain"
)

var (
	// vstest: "  Passed Namespace.Class.Test [5 ms]"
	vstestResultPattern = regexp.MustCompile(`^\s*(Passed|Failed|Skipped)(!?)\s+(.+?)(?:\s+\[([\d.]+)\s*(ms|s|m|h)\])?\s*$`)

	// mtp: "failed Namespace.Class.Test(1) (3s 12ms)"
	mtpResultPattern = regexp.MustCompile(`^(passed|failed|skipped)\s+(.+?)(?:\s+\(([^)]+)\))?\s*$`)

	durationPartPattern = regexp.MustCompile(`^[\d.]+(ms|s|m|h)$`)
)

// ParseTestList extracts test names from a runner's list output. Both
// runners print a header followed by one indented name per line; anything
// before the header is version noise and is dropped.
func ParseTestList(r io.Reader) []string {
	var names []string
	inList := false

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		lower := strings.ToLower(strings.TrimSpace(line))
		if strings.HasPrefix(lower, "the following tests are available") {
			inList = true
			continue
		}
		if !inList {
			continue
		}
		if !strings.HasPrefix(line, " ") && !strings.HasPrefix(line, "\t") {
			// End of the indented block
			break
		}
		name := strings.TrimSpace(line)
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}

// resultSection tracks which detail block of a failed test we are inside
type resultSection int

const (
	sectionNone resultSection = iota
	sectionError
	sectionStack
	sectionOutput
)

// vstestRunParser is a line state machine over vstest console logger output.
// A result line opens a pending result; Error Message / Stack Trace /
// Standard Output blocks accumulate into it until the next result line.
type vstestRunParser struct {
	pending *domain.TestRunResult
	section resultSection
	buf     map[resultSection][]string
}

func newVSTestRunParser() *vstestRunParser {
	return &vstestRunParser{buf: make(map[resultSection][]string)}
}

// Feed consumes one output line and returns a completed result, if any.
func (p *vstestRunParser) Feed(line string) *domain.TestRunResult {
	// Summary lines carry a bang after the outcome word ("Failed!  -
	// Failed: 1, ...") or a count tail; prose that happens to start with
	// an outcome word has a colon outside any argument list. Test names
	// only carry colons inside parentheses ("Parses(version: 1.2.3)").
	if m := vstestResultPattern.FindStringSubmatch(line); m != nil && m[2] == "" && !colonOutsideParens(m[3]) {
		done := p.Flush()
		name := strings.TrimSpace(m[3])
		p.pending = &domain.TestRunResult{
			ID:          name,
			DisplayName: name,
			Outcome:     m[1],
			Duration:    parseUnitDuration(m[4], m[5]),
		}
		p.section = sectionNone
		return done
	}

	if p.pending == nil {
		return nil
	}

	switch strings.TrimSpace(line) {
	case "Error Message:":
		p.section = sectionError
		return nil
	case "Stack Trace:":
		p.section = sectionStack
		return nil
	case "Standard Output Messages:":
		p.section = sectionOutput
		return nil
	}

	if p.section != sectionNone {
		if strings.TrimSpace(line) == "" {
			// A blank line closes the detail block, keeping summary
			// footer lines out of the captured text.
			p.section = sectionNone
			return nil
		}
		p.buf[p.section] = append(p.buf[p.section], strings.TrimRight(line, " \t"))
	}
	return nil
}

// Flush completes the pending result, attaching any accumulated detail.
func (p *vstestRunParser) Flush() *domain.TestRunResult {
	if p.pending == nil {
		return nil
	}
	res := p.pending
	res.ErrorMessage = joinTrimmed(p.buf[sectionError])
	res.StackTrace = joinTrimmed(p.buf[sectionStack])
	res.Output = joinTrimmed(p.buf[sectionOutput])
	p.pending = nil
	p.buf = make(map[resultSection][]string)
	p.section = sectionNone
	return res
}

// mtpRunParser handles Microsoft.Testing.Platform terminal output, where a
// lowercase outcome line is followed by indented failure details.
type mtpRunParser struct {
	pending *domain.TestRunResult
	details []string
}

func newMTPRunParser() *mtpRunParser {
	return &mtpRunParser{}
}

// Feed consumes one output line and returns a completed result, if any.
func (p *mtpRunParser) Feed(line string) *domain.TestRunResult {
	if m := mtpResultPattern.FindStringSubmatch(line); m != nil {
		done := p.Flush()
		name := strings.TrimSpace(m[2])
		p.pending = &domain.TestRunResult{
			ID:          name,
			DisplayName: name,
			Outcome:     mtpOutcome(m[1]),
			Duration:    parseCompositeDuration(m[3]),
		}
		return done
	}

	if p.pending != nil && (strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t")) {
		p.details = append(p.details, strings.TrimRight(line, " \t"))
	}
	return nil
}

// Flush completes the pending result, splitting details into message and
// stack trace ("at ..." frames).
func (p *mtpRunParser) Flush() *domain.TestRunResult {
	if p.pending == nil {
		return nil
	}
	res := p.pending
	var msg, stack []string
	for _, line := range p.details {
		if strings.HasPrefix(strings.TrimSpace(line), "at ") {
			stack = append(stack, line)
		} else {
			msg = append(msg, line)
		}
	}
	res.ErrorMessage = joinTrimmed(msg)
	res.StackTrace = joinTrimmed(stack)
	p.pending = nil
	p.details = nil
	return res
}

// colonOutsideParens reports whether s contains ": " outside every
// parenthesized argument list.
func colonOutsideParens(s string) bool {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case ':':
			if depth == 0 && i+1 < len(s) && s[i+1] == ' ' {
				return true
			}
		}
	}
	return false
}

func mtpOutcome(v string) string {
	switch v {
	case "passed":
		return domain.OutcomePassed
	case "skipped":
		return domain.OutcomeSkipped
	}
	return domain.OutcomeFailed
}

// parseUnitDuration converts a vstest "[5 ms]" value and unit pair
func parseUnitDuration(value, unit string) time.Duration {
	if value == "" {
		return 0
	}
	d, err := time.ParseDuration(value + unit)
	if err != nil {
		return 0
	}
	return d
}

// parseCompositeDuration converts an mtp "(1m 3s 12ms)" duration
func parseCompositeDuration(s string) time.Duration {
	var total time.Duration
	for _, part := range strings.Fields(s) {
		if !durationPartPattern.MatchString(part) {
			continue
		}
		if d, err := time.ParseDuration(part); err == nil {
			total += d
		}
	}
	return total
}

func joinTrimmed(lines []string) string {
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}
