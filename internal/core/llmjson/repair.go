// Package llmjson recovers a structured JSON array from unreliable
// language-model output. Models routinely wrap the array in a fenced code
// block, append prose after it, leave trailing commas or forget closing
// brackets; the repair here is an explicit best-effort transformation
// chain, not a validator. The bracket scan is deliberately unaware of
// string literals: the upstream output is uncontrolled and the contract is
// best effort, not guaranteed-valid.
package llmjson

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/devbot-ai/rag-backend/internal/core/domain"
)

var (
	codeFencePattern     = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")
	trailingCommaPattern = regexp.MustCompile(`,\s*([\]}])`)
)

var ErrNoArray = errors.New("no JSON array in model output")

// Repair applies the transformation chain and returns the candidate array
// text: fence stripping, balanced-array extraction, trailing-comma removal
// and bracket balancing, in that order.
func Repair(raw string) (string, error) {
	s := StripCodeFence(raw)
	s, err := ExtractArray(s)
	if err != nil {
		return "", err
	}
	s = StripTrailingCommas(s)
	s = BalanceBrackets(s)
	return s, nil
}

// StripCodeFence unwraps the first fenced code block if one is present.
func StripCodeFence(s string) string {
	if m := codeFencePattern.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return s
}

// ExtractArray isolates the outermost JSON array: it finds the first '['
// and scans forward tracking bracket depth until the matching ']'. Trailing
// prose after the array is discarded. When no matching ']' exists the text
// from '[' onward is returned for the balancing stage to finish.
func ExtractArray(s string) (string, error) {
	start := strings.IndexByte(s, '[')
	if start < 0 {
		return "", ErrNoArray
	}
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
		}
		if depth == 0 {
			return s[start : i+1], nil
		}
	}
	return s[start:], nil
}

// StripTrailingCommas removes commas that directly precede a closing
// bracket or brace.
func StripTrailingCommas(s string) string {
	return trailingCommaPattern.ReplaceAllString(s, "$1")
}

// BalanceBrackets appends missing ']' and '}' when open counts exceed
// close counts. Best-effort: it never reorders or removes characters.
func BalanceBrackets(s string) string {
	s = balance(s, '{', '}')
	return balance(s, '[', ']')
}

func balance(s string, open, close byte) string {
	o := strings.Count(s, string(open))
	c := strings.Count(s, string(close))
	if o > c {
		return s + strings.Repeat(string(close), o-c)
	}
	return s
}

// ParseAnswerItems repairs raw model output and parses it into answer
// items. Strict JSON is tried first; yaml.v3 serves as the lenient
// fallback since YAML 1.2 accepts the common deviations (unquoted keys,
// single quotes) that survive repair.
func ParseAnswerItems(raw string) ([]domain.AnswerItem, error) {
	candidate, err := Repair(raw)
	if err != nil {
		return nil, err
	}

	var items []domain.AnswerItem
	if err := json.Unmarshal([]byte(candidate), &items); err == nil {
		return items, nil
	}
	if err := yaml.Unmarshal([]byte(candidate), &items); err != nil {
		return nil, fmt.Errorf("parse repaired array: %w", err)
	}
	return items, nil
}
