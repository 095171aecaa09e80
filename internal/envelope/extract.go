package envelope

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"refbot/internal/domain"
)

var (
	ErrNoNumber         = errors.New("no number found")
	ErrMultipleNumbers  = errors.New("more than one number found")
	ErrNumberOutOfRange = errors.New("number out of range")
)

// NumberError describes why a play number could not be extracted. Message is
// the sentence shown to the coach.
type NumberError struct {
	Err   error
	Found string
}

func (e *NumberError) Error() string {
	return e.Message()
}

func (e *NumberError) Unwrap() error {
	return e.Err
}

// Message returns the user-facing explanation.
func (e *NumberError) Message() string {
	switch {
	case errors.Is(e.Err, ErrMultipleNumbers):
		return "It looks like you put more than one number in your message."
	case errors.Is(e.Err, ErrNumberOutOfRange):
		return fmt.Sprintf("I found %s, but that's not a valid number. Numbers must be between %d and %d.",
			e.Found, domain.MinPlayNumber, domain.MaxPlayNumber)
	default:
		return "It looks like you should be sending me a number, but I can't find one in your message."
	}
}

var numberPattern = regexp.MustCompile(`\d+`)

// ExtractNumber finds the single play number in text.
func ExtractNumber(text string) (int, error) {
	found := numberPattern.FindAllString(text, -1)
	switch len(found) {
	case 0:
		return 0, &NumberError{Err: ErrNoNumber}
	case 1:
	default:
		return 0, &NumberError{Err: ErrMultipleNumbers}
	}
	n, err := strconv.Atoi(found[0])
	if err != nil || n < domain.MinPlayNumber || n > domain.MaxPlayNumber {
		return 0, &NumberError{Err: ErrNumberOutOfRange, Found: found[0]}
	}
	return n, nil
}

// KeywordStatus is the outcome of a keyword search.
type KeywordStatus int

const (
	KeywordNone KeywordStatus = iota
	KeywordMatched
	KeywordAmbiguous
)

// Keyword is one candidate option and the phrases that select it.
type Keyword struct {
	Name    string
	Aliases []string
}

// KeywordMatch reports which candidate a message selected.
type KeywordMatch struct {
	Status     KeywordStatus
	Value      string
	Candidates []string
}

// FindKeyword looks for exactly one candidate in text. Matching is
// case-insensitive and a candidate counts once however many aliases match.
func FindKeyword(candidates []Keyword, text string) KeywordMatch {
	lower := strings.ToLower(text)
	var matched []string
	for _, c := range candidates {
		for _, alias := range append([]string{c.Name}, c.Aliases...) {
			if alias != "" && strings.Contains(lower, strings.ToLower(alias)) {
				matched = append(matched, c.Name)
				break
			}
		}
	}
	switch len(matched) {
	case 0:
		return KeywordMatch{Status: KeywordNone}
	case 1:
		return KeywordMatch{Status: KeywordMatched, Value: matched[0], Candidates: matched}
	default:
		return KeywordMatch{Status: KeywordAmbiguous, Candidates: matched}
	}
}

// ContainsAny reports whether text contains any of phrases, case-insensitively.
func ContainsAny(text string, phrases ...string) bool {
	lower := strings.ToLower(text)
	for _, p := range phrases {
		if strings.Contains(lower, strings.ToLower(p)) {
			return true
		}
	}
	return false
}
