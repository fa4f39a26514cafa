// Package rules corrects recognized transcripts with user-maintained
// substitution rules before they are classified.
//
// A rules file holds one rule per line:
//
//	gonna => going to
//	s/\bteh\b/the/g
//
// A "[xx]" header scopes the rules that follow to transcripts in language xx
// (primary subtag); "[*]" returns to rules for every language.
package rules

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"livetranslate/internal/domain"
)

const defaultIterationLimit = 30

// Substitution rewrites text, reporting whether anything changed.
type Substitution interface {
	Rewrite(input string) (output string, changed bool)
}

// LineParser turns one rule line into a Substitution.
type LineParser interface {
	Accepts(line string) bool
	Parse(line string) (Substitution, error)
}

type scopedRule struct {
	language string // primary subtag, empty for every language
	rule     Substitution
}

// Engine applies substitutions until the text stops changing.
type Engine struct {
	rules          []scopedRule
	iterationLimit int
}

// Load reads a rules file. A missing file yields an engine without rules.
func Load(path string, iterationLimit int) (*Engine, error) {
	if strings.TrimSpace(path) == "" {
		return &Engine{iterationLimit: normalizeLimit(iterationLimit)}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Engine{iterationLimit: normalizeLimit(iterationLimit)}, nil
		}
		return nil, fmt.Errorf("failed to read rules file %q: %w", path, err)
	}
	defer f.Close()

	engine, err := Parse(f, iterationLimit, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to parse rules file %q: %w", path, err)
	}
	return engine, nil
}

// Parse compiles rules from r. A nil parser list uses the built-in formats.
func Parse(r io.Reader, iterationLimit int, parsers []LineParser) (*Engine, error) {
	if len(parsers) == 0 {
		parsers = builtinParsers()
	}

	engine := &Engine{iterationLimit: normalizeLimit(iterationLimit)}
	scope := ""
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if header, ok := scopeHeader(line); ok {
			scope = header
			continue
		}

		rule, err := parseLine(line, parsers)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		engine.rules = append(engine.rules, scopedRule{language: scope, rule: rule})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return engine, nil
}

// Apply rewrites text with the rules for language and the unscoped rules.
func (e *Engine) Apply(text string, language string) (string, error) {
	active := e.rulesFor(domain.PrimarySubtag(language))
	if len(active) == 0 {
		return text, nil
	}

	result := text
	for i := 0; i < e.iterationLimit; i++ {
		changed := false
		for _, rule := range active {
			if next, ok := rule.Rewrite(result); ok {
				result = next
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	return result, nil
}

// Len reports how many rules were loaded.
func (e *Engine) Len() int {
	return len(e.rules)
}

func (e *Engine) rulesFor(language string) []Substitution {
	var active []Substitution
	for _, r := range e.rules {
		if r.language == "" || r.language == language {
			active = append(active, r.rule)
		}
	}
	return active
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return defaultIterationLimit
	}
	return limit
}

func scopeHeader(line string) (string, bool) {
	if len(line) < 3 || line[0] != '[' || line[len(line)-1] != ']' {
		return "", false
	}
	inner := strings.TrimSpace(line[1 : len(line)-1])
	if inner == "*" {
		return "", true
	}
	return domain.PrimarySubtag(inner), true
}

func parseLine(line string, parsers []LineParser) (Substitution, error) {
	for _, parser := range parsers {
		if parser.Accepts(line) {
			return parser.Parse(line)
		}
	}
	return nil, errors.New("unsupported rule format")
}

func builtinParsers() []LineParser {
	return []LineParser{sedParser{}, phraseParser{}}
}

// phraseParser handles "from => to", matched case-insensitively on word boundaries.
type phraseParser struct{}

func (phraseParser) Accepts(line string) bool {
	return strings.Contains(line, "=>")
}

func (phraseParser) Parse(line string) (Substitution, error) {
	from, to, _ := strings.Cut(line, "=>")
	from = strings.TrimSpace(from)
	if from == "" {
		return nil, errors.New("phrase rule source cannot be empty")
	}
	re, err := regexp.Compile("(?i)" + wordBoundary(from[0]) + regexp.QuoteMeta(from) + wordBoundary(from[len(from)-1]))
	if err != nil {
		return nil, fmt.Errorf("invalid phrase: %w", err)
	}
	return regexSubstitution{re: re, replacement: strings.TrimSpace(to), all: true, literal: true}, nil
}

// sedParser handles "s/pattern/replacement/flags" with any punctuation delimiter.
type sedParser struct{}

func (sedParser) Accepts(line string) bool {
	return len(line) > 1 && line[0] == 's' && isDelimiter(line[1])
}

func (sedParser) Parse(line string) (Substitution, error) {
	delim := line[1]
	pattern, next, err := readField(line, 2, delim)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern: %w", err)
	}
	replacement, next, err := readField(line, next, delim)
	if err != nil {
		return nil, fmt.Errorf("invalid replacement: %w", err)
	}

	inline := "i"
	all := false
	for _, flag := range strings.TrimSpace(line[next:]) {
		switch flag {
		case 'g':
			all = true
		case 'i':
		case 'm', 's':
			inline += string(flag)
		case ' ':
		default:
			return nil, fmt.Errorf("unsupported flag %q", flag)
		}
	}

	re, err := regexp.Compile("(?" + inline + ")" + pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid regex: %w", err)
	}
	return regexSubstitution{re: re, replacement: replacement, all: all}, nil
}

type regexSubstitution struct {
	re          *regexp.Regexp
	replacement string
	all         bool
	literal     bool
}

func (s regexSubstitution) Rewrite(input string) (string, bool) {
	if s.all {
		var output string
		if s.literal {
			output = s.re.ReplaceAllLiteralString(input, s.replacement)
		} else {
			output = s.re.ReplaceAllString(input, s.replacement)
		}
		return output, output != input
	}

	loc := s.re.FindStringSubmatchIndex(input)
	if loc == nil {
		return input, false
	}
	expanded := s.re.ExpandString(nil, s.replacement, input, loc)
	output := input[:loc[0]] + string(expanded) + input[loc[1]:]
	return output, output != input
}

func readField(line string, start int, delim byte) (string, int, error) {
	if start >= len(line) {
		return "", 0, errors.New("unexpected end of expression")
	}
	var b strings.Builder
	for i := start; i < len(line); i++ {
		c := line[i]
		if c == '\\' && i+1 < len(line) {
			if line[i+1] == delim {
				b.WriteByte(delim)
			} else {
				b.WriteByte(c)
				b.WriteByte(line[i+1])
			}
			i++
			continue
		}
		if c == delim {
			return b.String(), i + 1, nil
		}
		b.WriteByte(c)
	}
	return "", 0, errors.New("unterminated expression")
}

func wordBoundary(c byte) string {
	if c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' {
		return `\b`
	}
	return ""
}

func isDelimiter(c byte) bool {
	return !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == ' ' || c == '\t')
}
