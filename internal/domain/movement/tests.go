package movement

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/okian/coachboard/internal/domain/numeric"
)

// Check is one checklist item of a movement test.
type Check struct {
	Label  string
	Failed bool
}

// Category is a named movement test and its checklist, in entry order.
type Category struct {
	Name   string
	Checks []Check
}

// Tests maps category names to checklists. Iteration order is insertion
// order: categories and labels keep the position of their first
// appearance, and setting an existing key replaces its value in place.
type Tests struct {
	cats []Category
	idx  map[string]int
}

// Set records whether label failed within category, creating either as
// needed.
func (t *Tests) Set(category, label string, failed bool) {
	c := t.category(category)
	for i := range c.Checks {
		if c.Checks[i].Label == label {
			c.Checks[i].Failed = failed
			return
		}
	}
	c.Checks = append(c.Checks, Check{Label: label, Failed: failed})
}

// Add creates an empty category if it does not exist yet.
func (t *Tests) Add(category string) {
	t.category(category)
}

// Categories returns the categories in insertion order. The slice must not
// be modified.
func (t *Tests) Categories() []Category {
	if t == nil {
		return nil
	}
	return t.cats
}

// Len returns the number of categories.
func (t *Tests) Len() int {
	if t == nil {
		return 0
	}
	return len(t.cats)
}

func (t *Tests) category(name string) *Category {
	if t.idx == nil {
		t.idx = make(map[string]int)
	}
	if i, ok := t.idx[name]; ok {
		return &t.cats[i]
	}
	t.idx[name] = len(t.cats)
	t.cats = append(t.cats, Category{Name: name})
	return &t.cats[len(t.cats)-1]
}

// reset empties category name in place, keeping its position.
func (t *Tests) reset(name string) {
	c := t.category(name)
	c.Checks = nil
}

// MarshalJSON writes categories and labels as JSON objects in order.
func (t Tests) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range t.cats {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeKey(&buf, c.Name); err != nil {
			return nil, err
		}
		buf.WriteByte('{')
		for j, chk := range c.Checks {
			if j > 0 {
				buf.WriteByte(',')
			}
			if err := writeKey(&buf, chk.Label); err != nil {
				return nil, err
			}
			if chk.Failed {
				buf.WriteString("true")
			} else {
				buf.WriteString("false")
			}
		}
		buf.WriteByte('}')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

var errNotObject = errors.New("movement: tests must be a JSON object")

// UnmarshalJSON reads a category → label → value object, preserving key
// order. Leaf values are read by truthiness; a category whose value is not
// an object is kept with no checks. Any value other than an object, null
// included, leaves Tests empty.
func (t *Tests) UnmarshalJSON(data []byte) error {
	*t = Tests{}
	if trimmed := bytes.TrimSpace(data); len(trimmed) == 0 || trimmed[0] != '{' {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("movement: decode tests: %w", err)
	}
	for dec.More() {
		name, err := objectKey(dec)
		if err != nil {
			return err
		}
		t.reset(name)
		if err := t.decodeChecks(dec, name); err != nil {
			return err
		}
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("movement: decode tests: %w", err)
	}
	return nil
}

func (t *Tests) decodeChecks(dec *json.Decoder, category string) error {
	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("movement: decode category %q: %w", category, err)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil
	}

	sub := json.NewDecoder(bytes.NewReader(raw))
	sub.UseNumber()
	if _, err := sub.Token(); err != nil {
		return fmt.Errorf("movement: decode category %q: %w", category, err)
	}
	for sub.More() {
		label, err := objectKey(sub)
		if err != nil {
			return err
		}
		var v any
		if err := sub.Decode(&v); err != nil {
			return fmt.Errorf("movement: decode %q/%q: %w", category, label, err)
		}
		t.Set(category, label, numeric.Truthy(v))
	}
	return nil
}

func objectKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", fmt.Errorf("movement: decode tests: %w", err)
	}
	key, ok := tok.(string)
	if !ok {
		return "", errNotObject
	}
	return key, nil
}

func writeKey(buf *bytes.Buffer, key string) error {
	b, err := json.Marshal(key)
	if err != nil {
		return err
	}
	buf.Write(b)
	buf.WriteByte(':')
	return nil
}
