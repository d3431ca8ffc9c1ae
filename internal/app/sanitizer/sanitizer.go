// Package sanitizer strips terminal escape sequences and control
// characters from untrusted agent output before it is rendered.
package sanitizer

import "regexp"

// Escape sequence classes that must never reach the terminal: CSI (cursor
// and mode control), OSC (title and clipboard writes), charset selection,
// and orphaned SGR mouse reports left over from truncated input.
var escapePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\x1b\[[<>?=]?[0-9;]*[A-Za-z@^` + "`" + `~{|}!]`),
	regexp.MustCompile(`\x1b\][^\x07\x1b]*(?:\x07|\x1b\\)`),
	regexp.MustCompile(`\x1b[()][AB012]`),
	regexp.MustCompile(`\[<[0-9]+;[0-9]+;[0-9]+[Mm]`),
}

type Config struct {
	AllowNewlines      bool
	AllowTabs          bool
	ReplaceNewlineWith string
	MaxLength          int
}

// DefaultConfig keeps newlines for multi-line block content.
func DefaultConfig() Config {
	return Config{AllowNewlines: true}
}

// SingleLineConfig flattens text destined for one-line labels.
func SingleLineConfig() Config {
	return Config{ReplaceNewlineWith: " "}
}

type TerminalSanitizer struct {
	config Config
}

func NewTerminalSanitizer(config Config) *TerminalSanitizer {
	return &TerminalSanitizer{config: config}
}

func (s *TerminalSanitizer) Sanitize(input string) string {
	if input == "" {
		return input
	}
	for _, pattern := range escapePatterns {
		input = pattern.ReplaceAllString(input, "")
	}

	result := make([]rune, 0, len(input))
	for _, r := range input {
		switch {
		case r == '\n':
			if s.config.AllowNewlines {
				result = append(result, r)
			} else if s.config.ReplaceNewlineWith != "" {
				result = append(result, []rune(s.config.ReplaceNewlineWith)...)
			}
		case r == '\t':
			if s.config.AllowTabs {
				result = append(result, r)
			}
		case r < 32 || r == 127:
		default:
			result = append(result, r)
		}
	}

	sanitized := string(result)
	if s.config.MaxLength > 0 && len(sanitized) > s.config.MaxLength {
		sanitized = sanitized[:s.config.MaxLength]
	}
	return sanitized
}
