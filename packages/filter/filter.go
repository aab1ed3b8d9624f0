package filter

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Error reports why a filter could not produce a value. It never invalidates
// the exchange: the response was received, only its rendering failed.
type Error struct {
	Path    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("json filter %q: %s", e.Path, e.Message)
}

// IsFilterError reports whether err is a filter Error.
func IsFilterError(err error) bool {
	var fe *Error
	return errors.As(err, &fe)
}

// segment is one dot-separated step: an optional object key followed by zero
// or more array indexes.
type segment struct {
	key     string
	indexes []int
}

// Evaluate applies the path to the JSON document in body and returns the
// matched sub-value exactly as it appears in the source text, key order and
// all. "." selects the whole document.
func Evaluate(path string, body []byte) (string, error) {
	segments, err := parse(path)
	if err != nil {
		return "", err
	}

	if !gjson.ValidBytes(body) {
		return "", &Error{Path: path, Message: "response body is not valid JSON"}
	}

	current := gjson.ParseBytes(body)
	for _, seg := range segments {
		if seg.key != "" {
			if !current.IsObject() {
				return "", &Error{Path: path, Message: fmt.Sprintf("cannot read key %q: value is not an object", seg.key)}
			}
			next := current.Get(escapeKey(seg.key))
			if !next.Exists() {
				return "", &Error{Path: path, Message: fmt.Sprintf("key %q not found", seg.key)}
			}
			current = next
		}

		for _, idx := range seg.indexes {
			if !current.IsArray() {
				return "", &Error{Path: path, Message: fmt.Sprintf("cannot index [%d]: value is not an array", idx)}
			}
			elems := current.Array()
			if idx >= len(elems) {
				return "", &Error{Path: path, Message: fmt.Sprintf("index %d out of range (array length %d)", idx, len(elems))}
			}
			current = elems[idx]
		}
	}

	return current.Raw, nil
}

// parse splits the path into segments. The leading dot is optional; "." alone
// means the whole document.
func parse(path string) ([]segment, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, &Error{Path: path, Message: "empty filter path"}
	}
	if trimmed == "." {
		return nil, nil
	}

	trimmed = strings.TrimPrefix(trimmed, ".")

	parts := strings.Split(trimmed, ".")
	segments := make([]segment, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			return nil, &Error{Path: path, Message: "empty path segment"}
		}
		seg, err := parseSegment(path, part)
		if err != nil {
			return nil, err
		}
		segments = append(segments, seg)
	}
	return segments, nil
}

func parseSegment(path, raw string) (segment, error) {
	bracket := strings.IndexByte(raw, '[')
	if bracket == -1 {
		if strings.IndexByte(raw, ']') != -1 {
			return segment{}, &Error{Path: path, Message: fmt.Sprintf("unexpected %q in segment %q", "]", raw)}
		}
		return segment{key: raw}, nil
	}

	seg := segment{key: raw[:bracket]}
	rest := raw[bracket:]
	for rest != "" {
		if rest[0] != '[' {
			return segment{}, &Error{Path: path, Message: fmt.Sprintf("unexpected %q after index in segment %q", string(rest[0]), raw)}
		}
		end := strings.IndexByte(rest, ']')
		if end == -1 {
			return segment{}, &Error{Path: path, Message: fmt.Sprintf("unclosed index in segment %q", raw)}
		}
		idx, err := strconv.Atoi(rest[1:end])
		if err != nil || idx < 0 {
			return segment{}, &Error{Path: path, Message: fmt.Sprintf("invalid array index %q in segment %q", rest[1:end], raw)}
		}
		seg.indexes = append(seg.indexes, idx)
		rest = rest[end+1:]
	}
	return seg, nil
}

// escapeKey protects characters gjson treats as path syntax so that literal
// keys like "a*b" resolve exactly.
func escapeKey(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch r {
		case '\\', '.', '*', '?', '|', '#', '@':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
