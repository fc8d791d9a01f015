package autoreply

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Category tags an inbound client message with the kind of canned reply it gets.
type Category string

const (
	CategoryGreeting        Category = "greeting"
	CategoryCaseStatus      Category = "case-status"
	CategoryHearingInfo     Category = "hearing-info"
	CategoryDocumentRequest Category = "document-request"
	CategoryBilling         Category = "billing"
	CategoryUrgent          Category = "urgent"
	CategoryAdvice          Category = "advice"
	CategoryFallback        Category = "general-fallback"
)

// KnownCategories is the fixed set of reply categories.
var KnownCategories = []Category{
	CategoryGreeting,
	CategoryCaseStatus,
	CategoryHearingInfo,
	CategoryDocumentRequest,
	CategoryBilling,
	CategoryUrgent,
	CategoryAdvice,
	CategoryFallback,
}

// IsKnownCategory reports whether c is one of KnownCategories.
func IsKnownCategory(c Category) bool {
	for _, known := range KnownCategories {
		if c == known {
			return true
		}
	}
	return false
}

// Rule maps a keyword set to a category and the template that renders it.
type Rule struct {
	Category Category `yaml:"category" json:"category"`
	Template string   `yaml:"template" json:"template"`
	Keywords []string `yaml:"keywords,omitempty" json:"keywords,omitempty"`
}

// TemplateID returns the template, defaulting to the category name.
func (r Rule) TemplateID() string {
	if r.Template != "" {
		return r.Template
	}
	return string(r.Category)
}

// RuleTable is the ordered rule list plus the rule used when nothing matches.
// Order is priority: the first matching rule wins.
type RuleTable struct {
	Fallback Rule   `yaml:"fallback" json:"fallback"`
	Rules    []Rule `yaml:"rules" json:"rules"`
}

//go:embed default_rules.yaml
var defaultRulesYAML []byte

// DefaultRules returns the rule table shipped with the binary.
func DefaultRules() *RuleTable {
	table, err := ParseRules(defaultRulesYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded auto-reply rules are invalid: %v", err))
	}
	return table
}

// LoadRules reads a rule table from path, or returns DefaultRules when path is empty.
func LoadRules(path string) (*RuleTable, error) {
	if path == "" {
		return DefaultRules(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file %s: %w", path, err)
	}
	table, err := ParseRules(data)
	if err != nil {
		return nil, fmt.Errorf("rules file %s: %w", path, err)
	}
	return table, nil
}

// ParseRules decodes and validates a YAML rule table.
func ParseRules(data []byte) (*RuleTable, error) {
	var table RuleTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to parse rules: %w", err)
	}
	if table.Fallback.Category == "" {
		table.Fallback = Rule{Category: CategoryFallback, Template: string(CategoryFallback)}
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}
	return &table, nil
}

// Validate checks categories are known and unique, every rule has keywords,
// and the fallback is not also a keyword rule.
func (t *RuleTable) Validate() error {
	if !IsKnownCategory(t.Fallback.Category) {
		return fmt.Errorf("unknown fallback category %q", t.Fallback.Category)
	}
	if len(t.Fallback.Keywords) > 0 {
		return fmt.Errorf("fallback rule must not define keywords")
	}
	seen := map[Category]bool{t.Fallback.Category: true}
	for i, rule := range t.Rules {
		if !IsKnownCategory(rule.Category) {
			return fmt.Errorf("rule %d: unknown category %q", i, rule.Category)
		}
		if seen[rule.Category] {
			return fmt.Errorf("rule %d: category %q listed more than once", i, rule.Category)
		}
		seen[rule.Category] = true

		hasKeyword := false
		for _, kw := range rule.Keywords {
			if strings.TrimSpace(kw) != "" {
				hasKeyword = true
				break
			}
		}
		if !hasKeyword {
			return fmt.Errorf("rule %d (%s): no keywords", i, rule.Category)
		}
	}
	return nil
}

// Priority returns the categories in the order they are checked, fallback last.
func (t *RuleTable) Priority() []Category {
	order := make([]Category, 0, len(t.Rules)+1)
	for _, rule := range t.Rules {
		order = append(order, rule.Category)
	}
	return append(order, t.Fallback.Category)
}
