package nodeconf

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Parser reads daemon configuration files.
type Parser struct {
	// Locator supplies the path when Parse is called without one.
	// DefaultLocator is used when nil.
	Locator Locator
}

// Parse reads and parses the config file at path using DefaultLocator when
// path is empty.
func Parse(path string) (*Record, error) {
	return Parser{}.Parse(path)
}

// Parse reads the file at path, or at the located default when path is
// empty. Read errors are returned as-is so callers can match fs.ErrNotExist
// and fs.ErrPermission directly.
func (p Parser) Parse(path string) (*Record, error) {
	if path == "" {
		locator := p.Locator
		if locator == nil {
			locator = DefaultLocator
		}
		path = locator.Locate()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	record, _ := parse(string(data))
	return record, nil
}

// ParseReader parses config text from r.
func ParseReader(r io.Reader) (*Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return ParseString(string(data)), nil
}

// ParseString parses config text. Malformed lines are dropped silently.
func ParseString(text string) *Record {
	record, _ := parse(text)
	return record
}

// MalformedLinesError lists the 1-based line numbers that had no '='.
type MalformedLinesError struct {
	Lines []int
}

func (e *MalformedLinesError) Error() string {
	nums := make([]string, len(e.Lines))
	for i, n := range e.Lines {
		nums[i] = strconv.Itoa(n)
	}
	return fmt.Sprintf("malformed config lines (missing '='): %s", strings.Join(nums, ", "))
}

// ParseStrict parses like ParseString and additionally reports lines that
// lack a '=' separator. The record is always returned.
func ParseStrict(text string) (*Record, error) {
	record, malformed := parse(text)
	if len(malformed) > 0 {
		return record, &MalformedLinesError{Lines: malformed}
	}
	return record, nil
}

// ParseFileStrict is the file counterpart of ParseStrict.
func (p Parser) ParseFileStrict(path string) (*Record, error) {
	if path == "" {
		locator := p.Locator
		if locator == nil {
			locator = DefaultLocator
		}
		path = locator.Locate()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseStrict(string(data))
}

func parse(text string) (*Record, []int) {
	lower := cases.Lower(language.Und)
	record := NewRecord()
	var malformed []int

	for i, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		key = lower.String(strings.TrimSpace(key))
		if !found {
			malformed = append(malformed, i+1)
			record.unset(key)
			continue
		}
		record.Set(key, strings.TrimSpace(value))
	}

	record.compact()
	return record, malformed
}
