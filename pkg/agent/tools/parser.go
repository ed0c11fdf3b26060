package tools

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

const (
	useToolMarker = "USE_TOOL:"
	argsMarker    = "ARGS:"

	// maxResponseSize bounds the text a single parse will scan.
	maxResponseSize = 1 * 1024 * 1024
)

// ToolCall is a parsed tool invocation from a model reply. Args hold
// string values at the wire level; tools coerce them. Err is set when
// the directive was recognized but its argument object could not be
// parsed.
type ToolCall struct {
	Name string
	Args map[string]string
	Raw  string
	Err  error
}

// HasToolCall reports whether the text contains a USE_TOOL marker.
// A reply without one is the loop's completion signal.
func HasToolCall(text string) bool {
	return strings.Contains(text, useToolMarker)
}

// ParseToolCalls extracts every tool invocation from a model reply, in
// textual order. The parser is lenient on whitespace and tolerant of
// surrounding prose; it only requires the marker lines themselves:
//
//	USE_TOOL: <tool-name>
//	ARGS: <json-object>
//
// Invocations with a malformed argument object are returned with Err
// set so the failure can be surfaced to the model as a tool outcome.
func ParseToolCalls(text string) []ToolCall {
	if len(text) > maxResponseSize {
		text = text[:maxResponseSize]
	}

	var calls []ToolCall
	offset := 0

	for {
		idx := strings.Index(text[offset:], useToolMarker)
		if idx < 0 {
			break
		}
		start := offset + idx

		// Tool name runs to end of line.
		nameStart := start + len(useToolMarker)
		nameEnd := strings.IndexByte(text[nameStart:], '\n')
		if nameEnd < 0 {
			nameEnd = len(text) - nameStart
		}
		name := strings.TrimSpace(text[nameStart : nameStart+nameEnd])

		call := ToolCall{Name: name}
		next := nameStart + nameEnd

		if name == "" {
			call.Err = fmt.Errorf("tool name missing after %s", useToolMarker)
			calls = append(calls, call)
			offset = next
			continue
		}

		argsIdx := strings.Index(text[next:], argsMarker)
		nextTool := strings.Index(text[next:], useToolMarker)
		if argsIdx < 0 || (nextTool >= 0 && nextTool < argsIdx) {
			call.Err = fmt.Errorf("no %s block found for tool %q", argsMarker, name)
			calls = append(calls, call)
			offset = next
			continue
		}

		jsonStart := next + argsIdx + len(argsMarker)
		raw, consumed, err := scanJSONObject(text[jsonStart:])
		if err != nil {
			call.Err = fmt.Errorf("invalid arguments for tool %q: %w", name, err)
			calls = append(calls, call)
			offset = jsonStart
			continue
		}

		call.Raw = raw
		call.Args, call.Err = decodeArgs(raw)
		calls = append(calls, call)
		offset = jsonStart + consumed
	}

	return calls
}

// scanJSONObject finds the first brace-balanced JSON object in text and
// returns it with the number of bytes consumed. String literals are
// respected so braces inside values do not unbalance the scan.
func scanJSONObject(text string) (string, int, error) {
	start := -1
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c == '{' {
			start = i
			break
		}
		if c != ' ' && c != '\t' && c != '\n' && c != '\r' {
			return "", 0, fmt.Errorf("expected '{', found %q", string(c))
		}
	}
	if start < 0 {
		return "", 0, fmt.Errorf("no JSON object found")
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], i + 1, nil
			}
		}
	}

	return "", 0, fmt.Errorf("unbalanced braces in JSON object")
}

// decodeArgs parses the JSON object into a flat string map. Non-string
// scalars are stringified; nested objects and arrays are kept as their
// JSON text.
func decodeArgs(raw string) (map[string]string, error) {
	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	args := make(map[string]string, len(parsed))
	for key, val := range parsed {
		args[key] = stringifyArg(val)
	}
	return args, nil
}

func stringifyArg(val interface{}) string {
	switch v := val.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case nil:
		return ""
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(encoded)
	}
}
