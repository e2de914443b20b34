package av

import (
	"fmt"
	"strings"
)

const whitespace = " \n\t\r"

// Dictionary is an ordered set of string options with case-insensitive keys.
// Consumers delete the entries they recognise, so whatever remains after use
// is the set of unrecognised options.
type Dictionary struct {
	entries []entry
}

type entry struct {
	key   string
	value string
}

// NewDictionary returns an empty dictionary.
func NewDictionary() *Dictionary {
	return &Dictionary{}
}

// ParseDictionary parses "key<kvSep>value<pairSep>..." into a dictionary.
// Keys and values are trimmed; single quotes and backslash escapes protect
// separators and whitespace. A pair with an empty key, or without a key/value
// separator, is rejected with ErrInvalidOptions; "key=" stores an empty value. An empty string
// yields an empty dictionary.
func ParseDictionary(s, kvSep, pairSep string) (*Dictionary, error) {
	d := NewDictionary()
	rest := s
	for rest != "" {
		key, r := getToken(rest, kvSep)
		rest = r
		var val string
		hasVal := false
		if key != "" && rest != "" && strings.ContainsRune(kvSep, rune(rest[0])) {
			val, rest = getToken(rest[1:], pairSep)
			hasVal = true
		}
		if key == "" || !hasVal {
			return nil, fmt.Errorf("%w: malformed entry near %q", ErrInvalidOptions, clip(s, len(s)-len(rest)))
		}
		d.Set(key, val)
		if rest != "" {
			rest = rest[1:]
		}
	}
	return d, nil
}

// getToken reads one token up to any byte in term, honouring quotes and
// escapes, and returns the token and the unconsumed remainder starting at the
// terminator.
func getToken(s, term string) (string, string) {
	s = strings.TrimLeft(s, whitespace)
	out := make([]byte, 0, len(s))
	end := 0
	i := 0
	for i < len(s) && !strings.ContainsRune(term, rune(s[i])) {
		c := s[i]
		i++
		switch {
		case c == '\\' && i < len(s):
			out = append(out, s[i])
			i++
			end = len(out)
		case c == '\'':
			for i < len(s) && s[i] != '\'' {
				out = append(out, s[i])
				i++
			}
			if i < len(s) {
				i++
				end = len(out)
			}
		default:
			out = append(out, c)
		}
	}
	for len(out) > end && strings.ContainsRune(whitespace, rune(out[len(out)-1])) {
		out = out[:len(out)-1]
	}
	return string(out), s[i:]
}

func clip(s string, n int) string {
	if n > len(s) {
		n = len(s)
	}
	if n < 0 {
		n = 0
	}
	return s[:n]
}

func (d *Dictionary) index(key string) int {
	for i, e := range d.entries {
		if strings.EqualFold(e.key, key) {
			return i
		}
	}
	return -1
}

// Get returns the value for key.
func (d *Dictionary) Get(key string) (string, bool) {
	if d == nil {
		return "", false
	}
	if i := d.index(key); i >= 0 {
		return d.entries[i].value, true
	}
	return "", false
}

// Take returns the value for key and removes it, marking it consumed.
func (d *Dictionary) Take(key string) (string, bool) {
	v, ok := d.Get(key)
	if ok {
		d.Delete(key)
	}
	return v, ok
}

// Set stores value under key, replacing any existing entry in place.
func (d *Dictionary) Set(key, value string) {
	if i := d.index(key); i >= 0 {
		d.entries[i].value = value
		return
	}
	d.entries = append(d.entries, entry{key: key, value: value})
}

// Delete removes key if present.
func (d *Dictionary) Delete(key string) {
	if i := d.index(key); i >= 0 {
		d.entries = append(d.entries[:i], d.entries[i+1:]...)
	}
}

// Len returns the number of entries.
func (d *Dictionary) Len() int {
	if d == nil {
		return 0
	}
	return len(d.entries)
}

// Keys returns the keys in insertion order.
func (d *Dictionary) Keys() []string {
	if d == nil {
		return nil
	}
	keys := make([]string, len(d.entries))
	for i, e := range d.entries {
		keys[i] = e.key
	}
	return keys
}

// Each calls fn for every entry in order.
func (d *Dictionary) Each(fn func(key, value string)) {
	if d == nil {
		return
	}
	for _, e := range d.entries {
		fn(e.key, e.value)
	}
}

// Clear removes every entry.
func (d *Dictionary) Clear() {
	if d != nil {
		d.entries = nil
	}
}

// Encode serialises the dictionary, escaping separators and backslashes so
// the result parses back to the same entries.
func (d *Dictionary) Encode(kvSep, pairSep byte) string {
	if d == nil {
		return ""
	}
	var b strings.Builder
	special := string([]byte{kvSep, pairSep, '\\', '\''})
	esc := func(s string) {
		for i := 0; i < len(s); i++ {
			if strings.IndexByte(special, s[i]) >= 0 || strings.IndexByte(whitespace, s[i]) >= 0 {
				b.WriteByte('\\')
			}
			b.WriteByte(s[i])
		}
	}
	for i, e := range d.entries {
		if i > 0 {
			b.WriteByte(pairSep)
		}
		esc(e.key)
		b.WriteByte(kvSep)
		esc(e.value)
	}
	return b.String()
}

func (d *Dictionary) String() string {
	return d.Encode('=', ',')
}
