package object

import (
	"bytes"
	"strings"

	"emperror.dev/errors"
)

// KVLM is an ordered key/value-list with a trailing message, the text format
// shared by commits and annotated tags:
//
//	tree 4b825dc642cb6eb9a060e54bf8d69288fbee4904
//	parent 9a1f...
//	author A U Thor <a@example.com> 1700000000 +0000
//
//	message
//
// Keys keep their first-insertion order and every key may carry several
// values. Multi-line values are stored with plain "\n" separators and are
// written with a leading space on each continuation line.
type KVLM struct {
	keys    []string
	values  map[string][]string
	Message string
}

// NewKVLM returns an empty KVLM.
func NewKVLM() *KVLM {
	return &KVLM{values: make(map[string][]string)}
}

// Keys returns the header keys in insertion order.
func (kv *KVLM) Keys() []string {
	out := make([]string, len(kv.keys))
	copy(out, kv.keys)
	return out
}

// Get returns all values recorded for key.
func (kv *KVLM) Get(key string) []string {
	vals := kv.values[key]
	if len(vals) == 0 {
		return nil
	}
	out := make([]string, len(vals))
	copy(out, vals)
	return out
}

// First returns the first value recorded for key.
func (kv *KVLM) First(key string) (string, bool) {
	vals := kv.values[key]
	if len(vals) == 0 {
		return "", false
	}
	return vals[0], true
}

// Add appends value to key. Keys must be non-empty and must not contain
// spaces or newlines.
func (kv *KVLM) Add(key, value string) error {
	if !validKey(key) {
		return errors.WithDetails(ErrInvalidKey, "key", key)
	}
	if kv.values == nil {
		kv.values = make(map[string][]string)
	}
	if _, ok := kv.values[key]; !ok {
		kv.keys = append(kv.keys, key)
	}
	kv.values[key] = append(kv.values[key], value)
	return nil
}

// Set replaces every value of key with values, keeping the key's position.
func (kv *KVLM) Set(key string, values ...string) error {
	if len(values) == 0 {
		kv.Del(key)
		return nil
	}
	if _, ok := kv.values[key]; ok {
		kv.values[key] = append([]string(nil), values...)
		return nil
	}
	for _, v := range values {
		if err := kv.Add(key, v); err != nil {
			return err
		}
	}
	return nil
}

// Del removes key and its values.
func (kv *KVLM) Del(key string) {
	if _, ok := kv.values[key]; !ok {
		return
	}
	delete(kv.values, key)
	for i, k := range kv.keys {
		if k == key {
			kv.keys = append(kv.keys[:i], kv.keys[i+1:]...)
			break
		}
	}
}

// Len returns the number of distinct header keys.
func (kv *KVLM) Len() int {
	return len(kv.keys)
}

// Clone returns a deep copy.
func (kv *KVLM) Clone() *KVLM {
	out := NewKVLM()
	if kv == nil {
		return out
	}
	out.keys = append([]string(nil), kv.keys...)
	for k, v := range kv.values {
		out.values[k] = append([]string(nil), v...)
	}
	out.Message = kv.Message
	return out
}

// Bytes encodes kv. Header lines come first in key order, then a blank line,
// then the message with trailing whitespace removed.
func (kv *KVLM) Bytes() []byte {
	var buf bytes.Buffer
	for _, k := range kv.keys {
		for _, v := range kv.values[k] {
			buf.WriteString(k)
			buf.WriteByte(' ')
			buf.WriteString(strings.ReplaceAll(v, "\n", "\n "))
			buf.WriteByte('\n')
		}
	}
	if len(kv.keys) == 0 {
		buf.WriteByte('\n')
	}
	buf.WriteByte('\n')
	buf.WriteString(strings.TrimRight(kv.Message, " \t\r\n"))
	return buf.Bytes()
}

// ParseKVLM decodes a KVLM. Empty input yields an empty KVLM.
func ParseKVLM(data []byte) (*KVLM, error) {
	kv := NewKVLM()
	if len(data) == 0 {
		return kv, nil
	}

	rest := strings.TrimPrefix(string(data), "\n")
	lastKey := ""
	for {
		line, tail, found := strings.Cut(rest, "\n")
		if !found {
			return nil, &ParseError{Line: line, Reason: "missing message section"}
		}
		rest = tail

		if line == "" {
			break
		}
		if line[0] == ' ' {
			if lastKey == "" {
				return nil, &ParseError{Line: line, Reason: "continuation before first header"}
			}
			vals := kv.values[lastKey]
			vals[len(vals)-1] += "\n" + line[1:]
			continue
		}

		key, value, ok := strings.Cut(line, " ")
		if !ok || kv.Add(key, value) != nil {
			return nil, &ParseError{Line: line, Reason: "header is not a key/value pair"}
		}
		lastKey = key
	}

	kv.Message = strings.TrimRight(strings.TrimLeft(rest, "\n"), " \t\r\n")
	return kv, nil
}

func validKey(key string) bool {
	return key != "" && !strings.ContainsAny(key, " \n")
}
