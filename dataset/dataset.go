// Package dataset loads and validates the fine-tuning corpus for the SQL
// generation model: line-delimited JSON records pairing a natural-language
// instruction with the MSSQL statement that answers it.
package dataset

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// PromptPrefix is the instruction header every training prompt starts with.
// The generation model is fine-tuned on prompts in this shape, so the same
// prefix is used when building inference-time prompts.
const PromptPrefix = "Convert this into MSSQL:"

var (
	ErrEmptyPrompt     = errors.New("dataset: empty prompt")
	ErrEmptyCompletion = errors.New("dataset: empty completion")
	ErrBadPrefix       = errors.New("dataset: prompt does not start with " + PromptPrefix)
	ErrNoSemicolon     = errors.New("dataset: completion does not end with a semicolon")
	ErrIndexOutOfRange = errors.New("dataset: example index out of range")
)

// Example is a single training record: a natural-language request and the
// MSSQL statement the model should produce for it.
type Example struct {
	Prompt     string `json:"prompt"`
	Completion string `json:"completion"`
}

// Validate checks the structural invariants every record in the corpus
// holds: a non-empty prompt carrying the instruction prefix and a non-empty
// completion terminated by a semicolon.
func (e Example) Validate() error {
	if e.Prompt == "" {
		return ErrEmptyPrompt
	}
	if !strings.HasPrefix(e.Prompt, PromptPrefix) {
		return ErrBadPrefix
	}
	if e.Completion == "" {
		return ErrEmptyCompletion
	}
	if !strings.HasSuffix(strings.TrimSpace(e.Completion), ";") {
		return ErrNoSemicolon
	}
	return nil
}

// Question returns the natural-language request with the instruction prefix
// stripped.
func (e Example) Question() string {
	return strings.TrimSpace(strings.TrimPrefix(e.Prompt, PromptPrefix))
}

// Set is an ordered, read-only collection of examples as loaded from one
// JSONL source.
type Set struct {
	examples []Example
}

// Load reads line-delimited JSON records from r in order. Blank lines are
// skipped. Any malformed or invariant-breaking line fails the whole load
// with its 1-based line number.
func Load(r io.Reader) (*Set, error) {
	var examples []Example

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}

		var ex Example
		if err := json.Unmarshal([]byte(text), &ex); err != nil {
			return nil, fmt.Errorf("dataset: line %d: %w", line, err)
		}
		if err := ex.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		examples = append(examples, ex)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("dataset: read: %w", err)
	}

	return &Set{examples: examples}, nil
}

// Len returns the number of examples in the set.
func (s *Set) Len() int {
	return len(s.examples)
}

// At returns the example at index i in load order.
func (s *Set) At(i int) (Example, error) {
	if i < 0 || i >= len(s.examples) {
		return Example{}, fmt.Errorf("%w: %d", ErrIndexOutOfRange, i)
	}
	return s.examples[i], nil
}

// All returns a copy of the examples in load order.
func (s *Set) All() []Example {
	out := make([]Example, len(s.examples))
	copy(out, s.examples)
	return out
}

// WriteTo serializes the set back to the JSONL wire format, one record per
// line. Re-parsing the output yields a structurally identical set.
func (s *Set) WriteTo(w io.Writer) (int64, error) {
	var written int64
	for i, ex := range s.examples {
		data, err := json.Marshal(ex)
		if err != nil {
			return written, fmt.Errorf("dataset: marshal record %d: %w", i, err)
		}
		n, err := w.Write(append(data, '\n'))
		written += int64(n)
		if err != nil {
			return written, fmt.Errorf("dataset: write record %d: %w", i, err)
		}
	}
	return written, nil
}
