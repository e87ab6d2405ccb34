package bankcsv

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultCategory is used for debits no rule matches. It maps to the
// general expense account.
const DefaultCategory = "General"

// Rule assigns Category to transactions whose description contains Match.
type Rule struct {
	Match    string `yaml:"match"`
	Category string `yaml:"category"`
}

// Rules are evaluated in order; the first match wins.
type Rules []Rule

// LoadRules reads a YAML list of {match, category} rules. A missing file
// yields no rules.
func LoadRules(path string) (Rules, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading rules: %w", err)
	}
	var rules Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parsing rules %s: %w", path, err)
	}
	for i, r := range rules {
		if strings.TrimSpace(r.Match) == "" || strings.TrimSpace(r.Category) == "" {
			return nil, fmt.Errorf("rule %d: match and category are required", i+1)
		}
	}
	return rules, nil
}

// Categorize returns the category for a transaction description.
func (rs Rules) Categorize(desc string) string {
	d := strings.ToLower(desc)
	for _, r := range rs {
		if strings.Contains(d, strings.ToLower(r.Match)) {
			return r.Category
		}
	}
	return DefaultCategory
}
