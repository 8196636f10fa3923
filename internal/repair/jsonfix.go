// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package repair

import "strings"

// FixJSON applies best-effort structural repairs to JSON-like content:
// code fences and prose around the payload are stripped, trailing commas
// removed, and unterminated strings, objects, and arrays closed. The
// result is not guaranteed to parse; callers re-validate.
func FixJSON(raw string) string {
	s := stripFences(raw)
	s = slicePayload(s)
	s = stripTrailingCommas(s)
	return closeOpen(s)
}

// stripFences removes a surrounding markdown code fence if present.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	if i := strings.LastIndex(s, "```"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// slicePayload cuts leading and trailing prose around the outermost JSON
// value. Models sometimes wrap tool-less responses in commentary. The tail
// is only cut when the brackets up to that point balance; a truncated
// response keeps its tail so closeOpen can finish it.
func slicePayload(s string) string {
	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return s
	}
	s = s[start:]
	end := strings.LastIndexAny(s, "}]")
	if end >= 0 && balanced(s[:end+1]) {
		return s[:end+1]
	}
	return s
}

// stripTrailingCommas removes commas that directly precede a closing
// bracket. It tracks string state so commas inside string literals are
// never touched.
func stripTrailingCommas(s string) string {
	var out []byte
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			out = append(out, c)
			continue
		}
		if c == '"' {
			inString = true
			out = append(out, c)
			continue
		}
		if c == ',' {
			j := i + 1
			for j < len(s) && (s[j] == ' ' || s[j] == '\t' || s[j] == '\n' || s[j] == '\r') {
				j++
			}
			if j < len(s) && (s[j] == '}' || s[j] == ']') {
				continue
			}
		}
		out = append(out, c)
	}
	return string(out)
}

// balanced reports whether every string and bracket opened in s is closed.
func balanced(s string) bool {
	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
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
		case '{', '[':
			depth++
		case '}', ']':
			depth--
		}
	}
	return depth == 0 && !inString
}

// closeOpen scans the payload tracking string and bracket state, then
// appends whatever closers a truncated response is missing.
func closeOpen(s string) string {
	var stack []byte
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]
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
		case '{', '[':
			stack = append(stack, c)
		case '}':
			if len(stack) > 0 && stack[len(stack)-1] == '{' {
				stack = stack[:len(stack)-1]
			}
		case ']':
			if len(stack) > 0 && stack[len(stack)-1] == '[' {
				stack = stack[:len(stack)-1]
			}
		}
	}

	if inString {
		s += `"`
	}
	s = strings.TrimRight(s, " \t\n\r")
	s = strings.TrimSuffix(s, ",")
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == '{' {
			s += "}"
		} else {
			s += "]"
		}
	}
	return s
}
