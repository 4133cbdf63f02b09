package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	amerrors "github.com/Aman-CERP/amanlog/internal/errors"
)

// renderMetadata pretty-prints meta as a 2-space indented JSON object with
// sorted keys.
//
// Values that JSON can represent are encoded as-is. Nil pointers, including
// typed-nil errors and Stringers, are null. Everything else is replaced by a
// stable string before encoding:
//   - *errors.LogError: its FormatForLog fields
//   - other errors: Error()
//   - NaN and infinities: strconv formatting ("NaN", "+Inf", "-Inf")
//   - fmt.Stringer: String()
//   - anything else: fmt "%+v"
//
// Nested map[string]any and []any values are normalized element by element.
func renderMetadata(meta Metadata) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")

	if err := enc.Encode(normalizeMap(meta)); err != nil {
		// Unreachable once normalized; keep the record rather than lose it.
		return fmt.Sprintf("%+v", map[string]any(meta))
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

func normalizeMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	if isNilPointer(v) {
		return nil
	}

	switch val := v.(type) {
	case nil:
		return nil
	case string, bool:
		return val
	case error:
		var le *amerrors.LogError
		if errors.As(val, &le) {
			return amerrors.FormatForLog(val)
		}
		return val.Error()
	case float64:
		if nonFinite(val) {
			return strconv.FormatFloat(val, 'g', -1, 64)
		}
		return val
	case float32:
		if nonFinite(float64(val)) {
			return strconv.FormatFloat(float64(val), 'g', -1, 32)
		}
		return val
	case Metadata:
		return normalizeMap(val)
	case map[string]any:
		return normalizeMap(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalizeValue(item)
		}
		return out
	}

	if _, err := json.Marshal(v); err == nil {
		return v
	}
	if s, ok := v.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%+v", v)
}

// isNilPointer reports whether v holds a nil pointer, map, slice, func or
// channel behind a non-nil interface. Calling methods on such values may
// dereference nil.
func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

func nonFinite(f float64) bool {
	return math.IsNaN(f) || math.IsInf(f, 0)
}
