package instrument

import (
	"fmt"
	"strconv"
	"strings"
)

// Trigger condition grammar (case and whitespace insensitive):
//
//	condition  := deferred | comparison | <anything else>
//	comparison := subject op number
//	subject    := "ipo" | "price" | "revenue"
//	op         := ">" | ">="
//	number     := ["$"] digits ["," digits]* ["." digits] ["m"]
//	deferred   := text containing "fda" | "approval" | "milestone" | "phase"
//
// Deferred and unrecognized conditions evaluate to true. The uncertainty they
// describe is carried by the instrument's probability instead.

// Subject is the quantity a comparison reads
type Subject string

const (
	SubjectIPO     Subject = "ipo"
	SubjectPrice   Subject = "price"
	SubjectRevenue Subject = "revenue"
)

// Operator is a comparison operator
type Operator string

const (
	OpGT  Operator = ">"
	OpGTE Operator = ">="
)

var deferredKeywords = []string{"fda", "approval", "milestone", "phase"}

// Facts are the values a condition is evaluated against
type Facts struct {
	Price   float64
	Revenue *float64 // nil when no revenue figure is available
}

// Condition is a parsed trigger condition
type Condition interface {
	Eval(f Facts) bool
	String() string
}

// Comparison is "subject op threshold"
type Comparison struct {
	Subject   Subject
	Op        Operator
	Threshold float64
}

func (c Comparison) Eval(f Facts) bool {
	var lhs float64
	switch c.Subject {
	case SubjectIPO, SubjectPrice:
		lhs = f.Price
	case SubjectRevenue:
		if f.Revenue == nil {
			return true
		}
		lhs = *f.Revenue
	default:
		return true
	}

	if c.Op == OpGTE {
		return lhs >= c.Threshold
	}
	return lhs > c.Threshold
}

func (c Comparison) String() string {
	return fmt.Sprintf("%s %s %g", c.Subject, c.Op, c.Threshold)
}

// Deferred is a condition resolved outside the price model (regulatory
// milestones, unparseable text). Always true.
type Deferred struct {
	Reason string
	Text   string
}

func (d Deferred) Eval(Facts) bool { return true }

func (d Deferred) String() string {
	return fmt.Sprintf("deferred(%s): %q", d.Reason, d.Text)
}

// ParseCondition parses trigger condition text. It never fails: anything it
// cannot read becomes a Deferred condition.
func ParseCondition(text string) Condition {
	src := compact(text)
	if src == "" {
		return Deferred{Reason: "empty", Text: text}
	}

	for _, kw := range deferredKeywords {
		if strings.Contains(src, kw) {
			return Deferred{Reason: "milestone", Text: text}
		}
	}

	p := &condParser{src: src}
	for p.pos < len(p.src) {
		if c, ok := p.comparisonAt(p.pos); ok {
			return c
		}
		p.pos++
	}

	return Deferred{Reason: "unrecognized", Text: text}
}

// EvaluateCondition parses and evaluates text in one step
func EvaluateCondition(text string, price float64, revenue *float64) bool {
	return ParseCondition(text).Eval(Facts{Price: price, Revenue: revenue})
}

func compact(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

type condParser struct {
	src string
	pos int
}

// comparisonAt tries to read "subject op number" starting at i
func (p *condParser) comparisonAt(i int) (Comparison, bool) {
	rest := p.src[i:]

	var subj Subject
	for _, s := range []Subject{SubjectRevenue, SubjectPrice, SubjectIPO} {
		if strings.HasPrefix(rest, string(s)) {
			subj = s
			break
		}
	}
	if subj == "" {
		return Comparison{}, false
	}
	rest = rest[len(subj):]

	var op Operator
	switch {
	case strings.HasPrefix(rest, ">="):
		op = OpGTE
	case strings.HasPrefix(rest, ">"):
		op = OpGT
	default:
		return Comparison{}, false
	}
	rest = rest[len(op):]

	threshold, ok := readNumber(rest)
	if !ok {
		return Comparison{}, false
	}
	return Comparison{Subject: subj, Op: op, Threshold: threshold}, true
}

// readNumber reads a leading number, allowing a "$" prefix, thousands
// separators and a trailing "m" (millions, a no-op since every amount is in millions).
func readNumber(s string) (float64, bool) {
	s = strings.TrimPrefix(s, "$")

	end := 0
	seenDot := false
scan:
	for ; end < len(s); end++ {
		c := s[end]
		switch {
		case c >= '0' && c <= '9', c == ',':
		case c == '.' && !seenDot:
			seenDot = true
		default:
			break scan
		}
	}
	digits := strings.ReplaceAll(s[:end], ",", "")
	digits = strings.TrimSuffix(digits, ".")
	if digits == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
