package osmparser

import (
	"strconv"
	"strings"
	"unicode"

	da "github.com/lintang-b-s/navigatorx-extractor/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-extractor/pkg/util"
)

const (
	MINUTES_PER_DAY = 24 * 60
)

var (
	months = map[string]uint8{
		"Jan": 1, "Feb": 2, "Mar": 3, "Apr": 4, "May": 5, "Jun": 6,
		"Jul": 7, "Aug": 8, "Sep": 9, "Oct": 10, "Nov": 11, "Dec": 12,
	}
	weekdays = map[string]int{
		"Mo": 0, "Tu": 1, "We": 2, "Th": 3, "Fr": 4, "Sa": 5, "Su": 6,
	}
	modifiers = map[string]da.Modifier{
		"open":    da.MODIFIER_OPEN,
		"closed":  da.MODIFIER_CLOSED,
		"off":     da.MODIFIER_OFF,
		"unknown": da.MODIFIER_UNKNOWN,
	}
)

type tokenKind uint8

const (
	tokenWord tokenKind = iota
	tokenNumber
	tokenSymbol
)

type token struct {
	kind  tokenKind
	value string
}

func tokenize(s string) ([]token, error) {
	tokens := make([]token, 0, len(s)/2)
	runes := []rune(s)
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case unicode.IsLetter(r):
			j := i
			for j < len(runes) && unicode.IsLetter(runes[j]) {
				j++
			}
			tokens = append(tokens, token{kind: tokenWord, value: string(runes[i:j])})
			i = j
		case unicode.IsDigit(r):
			j := i
			for j < len(runes) && unicode.IsDigit(runes[j]) {
				j++
			}
			tokens = append(tokens, token{kind: tokenNumber, value: string(runes[i:j])})
			i = j
		case strings.ContainsRune("-,:/+", r):
			tokens = append(tokens, token{kind: tokenSymbol, value: string(r)})
			i++
		default:
			return nil, util.NewErrorf(util.ErrFilterableData, "unexpected character %q in opening hours %q", r, s)
		}
	}
	return tokens, nil
}

type openingHoursParser struct {
	input  string
	tokens []token
	pos    int
}

func (p *openingHoursParser) peek() (token, bool) {
	if p.pos >= len(p.tokens) {
		return token{}, false
	}
	return p.tokens[p.pos], true
}

func (p *openingHoursParser) peekSymbol(sym string) bool {
	t, ok := p.peek()
	return ok && t.kind == tokenSymbol && t.value == sym
}

func (p *openingHoursParser) next() (token, bool) {
	t, ok := p.peek()
	if ok {
		p.pos++
	}
	return t, ok
}

func (p *openingHoursParser) errorf(format string, a ...interface{}) error {
	return util.NewErrorf(util.ErrFilterableData, "opening hours %q: "+format, append([]interface{}{p.input}, a...)...)
}

func (p *openingHoursParser) expectSymbol(sym string) error {
	t, ok := p.next()
	if !ok || t.kind != tokenSymbol || t.value != sym {
		return p.errorf("expected %q", sym)
	}
	return nil
}

func (p *openingHoursParser) number(min, max int) (int, error) {
	t, ok := p.next()
	if !ok || t.kind != tokenNumber {
		return 0, p.errorf("expected a number")
	}
	n, err := strconv.Atoi(t.value)
	if err != nil || n < min || n > max {
		return 0, p.errorf("number %s out of range [%d, %d]", t.value, min, max)
	}
	return n, nil
}

/*
ParseOpeningHours parses the subset of the opening_hours syntax used by conditional
restrictions: rules separated by ';', each made of an optional month/day range, an optional
weekday selector, optional time spans and an optional modifier, e.g.

	Nov 01-Mar 31 Mo-Fr 07:00-09:00,16:00-18:30 off; Sa 24/7
*/
func ParseOpeningHours(s string) ([]da.OpeningHours, error) {
	rules := make([]da.OpeningHours, 0, 1)
	for _, rule := range strings.Split(s, ";") {
		rule = strings.TrimSpace(rule)
		if rule == "" {
			continue
		}
		tokens, err := tokenize(rule)
		if err != nil {
			return nil, err
		}
		p := &openingHoursParser{input: rule, tokens: tokens}
		oh, err := p.parseRule()
		if err != nil {
			return nil, err
		}
		rules = append(rules, oh)
	}
	if len(rules) == 0 {
		return nil, util.NewErrorf(util.ErrFilterableData, "empty opening hours")
	}
	return rules, nil
}

func (p *openingHoursParser) parseRule() (da.OpeningHours, error) {
	oh := da.OpeningHours{Modifier: da.MODIFIER_OPEN}
	for {
		t, ok := p.peek()
		if !ok {
			return oh, nil
		}

		switch {
		case t.kind == tokenWord && isMonth(t.value):
			ranges, err := p.parseMonthdays()
			if err != nil {
				return oh, err
			}
			oh.Monthdays = append(oh.Monthdays, ranges...)
		case t.kind == tokenWord && isWeekday(t.value):
			wr, err := p.parseWeekdays()
			if err != nil {
				return oh, err
			}
			oh.Weekdays = append(oh.Weekdays, wr)
		case t.kind == tokenWord && isModifier(t.value):
			p.next()
			oh.Modifier = modifiers[strings.ToLower(t.value)]
		case t.kind == tokenNumber && t.value == "24" && p.isTwentyFourSeven():
			p.pos += 3
		case t.kind == tokenNumber:
			spans, err := p.parseTimes()
			if err != nil {
				return oh, err
			}
			oh.Times = append(oh.Times, spans...)
		default:
			return oh, p.errorf("unsupported selector %q", t.value)
		}
	}
}

func isMonth(s string) bool {
	_, ok := months[s]
	return ok
}

func isWeekday(s string) bool {
	_, ok := weekdays[s]
	return ok
}

func isModifier(s string) bool {
	_, ok := modifiers[strings.ToLower(s)]
	return ok
}

func (p *openingHoursParser) isTwentyFourSeven() bool {
	if p.pos+2 >= len(p.tokens) {
		return false
	}
	slash, seven := p.tokens[p.pos+1], p.tokens[p.pos+2]
	return slash.kind == tokenSymbol && slash.value == "/" && seven.value == "7"
}

func (p *openingHoursParser) month() (uint8, error) {
	t, ok := p.next()
	if !ok || t.kind != tokenWord || !isMonth(t.value) {
		return 0, p.errorf("expected a month")
	}
	return months[t.value], nil
}

// optionalDay reads a day of month if the next token is a number not followed by ':'.
func (p *openingHoursParser) optionalDay() (uint8, bool, error) {
	t, ok := p.peek()
	if !ok || t.kind != tokenNumber {
		return 0, false, nil
	}
	if p.pos+1 < len(p.tokens) && p.tokens[p.pos+1].value == ":" {
		return 0, false, nil
	}
	d, err := p.number(1, 31)
	return uint8(d), true, err
}

// parseMonthdays reads "Nov", "Nov-Mar", "Dec 25", "Nov 01-Mar 31" and "Dec 24-26", comma separated.
func (p *openingHoursParser) parseMonthdays() ([]da.MonthdayRange, error) {
	ranges := make([]da.MonthdayRange, 0, 1)
	for {
		fromMonth, err := p.month()
		if err != nil {
			return nil, err
		}
		fromDay, hasFromDay, err := p.optionalDay()
		if err != nil {
			return nil, err
		}
		r := da.MonthdayRange{From: da.Monthday{Month: fromMonth, Day: 1}, To: da.Monthday{Month: fromMonth, Day: 31}}
		if hasFromDay {
			r.From.Day = fromDay
			r.To.Day = fromDay
		}

		if p.peekSymbol("-") {
			p.next()
			t, ok := p.peek()
			switch {
			case ok && t.kind == tokenWord:
				toMonth, err := p.month()
				if err != nil {
					return nil, err
				}
				r.To = da.Monthday{Month: toMonth, Day: 31}
				toDay, hasToDay, err := p.optionalDay()
				if err != nil {
					return nil, err
				}
				if hasToDay {
					r.To.Day = toDay
				}
			case ok && t.kind == tokenNumber && hasFromDay:
				toDay, err := p.number(1, 31)
				if err != nil {
					return nil, err
				}
				r.To.Day = uint8(toDay)
			default:
				return nil, p.errorf("bad month range")
			}
		}
		ranges = append(ranges, r)

		if !p.peekSymbol(",") {
			return ranges, nil
		}
		p.next()
	}
}

// parseWeekdays folds "Mo-Fr,Su" into one bit mask, Monday = bit 0. "Fr-Mo" wraps over the weekend.
func (p *openingHoursParser) parseWeekdays() (da.WeekdayRange, error) {
	weekday := func() (int, error) {
		t, ok := p.next()
		if !ok || t.kind != tokenWord || !isWeekday(t.value) {
			return 0, p.errorf("expected a weekday")
		}
		return weekdays[t.value], nil
	}

	var mask int32
	for {
		from, err := weekday()
		if err != nil {
			return da.WeekdayRange{}, err
		}
		to := from
		if p.peekSymbol("-") {
			p.next()
			if to, err = weekday(); err != nil {
				return da.WeekdayRange{}, err
			}
		}
		for d := from; ; d = (d + 1) % 7 {
			mask |= 1 << d
			if d == to {
				break
			}
		}

		if !p.peekSymbol(",") {
			return da.WeekdayRange{Weekdays: mask}, nil
		}
		p.next()
	}
}

func (p *openingHoursParser) clock(maxHour int) (int32, error) {
	h, err := p.number(0, maxHour)
	if err != nil {
		return 0, err
	}
	if err := p.expectSymbol(":"); err != nil {
		return 0, err
	}
	m, err := p.number(0, 59)
	if err != nil {
		return 0, err
	}
	return int32(h*60 + m), nil
}

// parseTimes reads "07:00-09:00,16:00-18:30". An end past 24:00 wraps into the next day.
func (p *openingHoursParser) parseTimes() ([]da.TimeSpan, error) {
	spans := make([]da.TimeSpan, 0, 1)
	for {
		from, err := p.clock(24)
		if err != nil {
			return nil, err
		}
		if err := p.expectSymbol("-"); err != nil {
			return nil, err
		}
		to, err := p.clock(48)
		if err != nil {
			return nil, err
		}
		if from >= MINUTES_PER_DAY {
			from -= MINUTES_PER_DAY
		}
		if to > MINUTES_PER_DAY {
			to -= MINUTES_PER_DAY
		}
		spans = append(spans, da.TimeSpan{From: from, To: to})

		if !p.peekSymbol(",") {
			return spans, nil
		}
		p.next()
	}
}
