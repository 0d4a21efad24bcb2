// Package registry loads the static buyer source and extraction rule
// configuration consumed by the signal pipeline.
package registry

import (
	"encoding/json"
	"os"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/buyer-signals/internal/model"
)

// Registry is the resolved, immutable source configuration for one run:
// the ordered buyer roster plus per-buyer extraction rules. Run output
// rows follow Buyers order.
type Registry struct {
	Buyers []model.BuyerSource
	rules  map[string]model.ExtractionRule
}

// Load reads the buyer source map (YAML, document order preserved), the
// fallback source map and the extraction rules map (JSON). Fallback or
// rule entries for buyers absent from the source map are ignored; lookups
// are always keyed from the source map's buyer set.
func Load(buyersPath, fallbacksPath, rulesPath string) (*Registry, error) {
	buyers, err := loadBuyers(buyersPath)
	if err != nil {
		return nil, err
	}

	fallbacks, err := loadFallbacks(fallbacksPath)
	if err != nil {
		return nil, err
	}
	for i := range buyers {
		buyers[i].Fallbacks = fallbacks[buyers[i].ID]
	}

	rules, err := loadRules(rulesPath)
	if err != nil {
		return nil, err
	}

	return &Registry{Buyers: buyers, rules: rules}, nil
}

// RuleFor returns the extraction rule for the given buyer, or a zero rule
// when none is configured. A zero rule means global date patterns only and
// no geography resolution.
func (r *Registry) RuleFor(buyerID string) model.ExtractionRule {
	return r.rules[buyerID]
}

// loadBuyers parses the top-level YAML map of buyer -> {press, leadership}
// via yaml.Node so the file's document order carries into the roster.
func loadBuyers(path string) ([]model.BuyerSource, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "registry: read buyer sources %s", path)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, eris.Wrap(err, "registry: parse buyer sources")
	}
	if len(doc.Content) == 0 {
		return nil, eris.Errorf("registry: buyer sources file is empty: %s", path)
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, eris.New("registry: buyer sources root must be a mapping")
	}

	var buyers []model.BuyerSource
	for i := 0; i+1 < len(root.Content); i += 2 {
		key := root.Content[i]
		val := root.Content[i+1]

		var entry struct {
			Press      string `yaml:"press"`
			Leadership string `yaml:"leadership"`
		}
		if err := val.Decode(&entry); err != nil {
			return nil, eris.Wrapf(err, "registry: decode buyer %q", key.Value)
		}
		if entry.Press == "" {
			return nil, eris.Errorf("registry: buyer %q has no press url", key.Value)
		}

		buyers = append(buyers, model.BuyerSource{
			ID:            key.Value,
			PressURL:      entry.Press,
			LeadershipURL: entry.Leadership,
		})
	}
	if len(buyers) == 0 {
		return nil, eris.Errorf("registry: no buyers configured in %s", path)
	}
	return buyers, nil
}

func loadFallbacks(path string) (map[string][]string, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			zap.L().Info("registry: no fallback sources file", zap.String("path", path))
			return nil, nil
		}
		return nil, eris.Wrapf(err, "registry: read fallback sources %s", path)
	}

	var fallbacks map[string][]string
	if err := json.Unmarshal(raw, &fallbacks); err != nil {
		return nil, eris.Wrap(err, "registry: parse fallback sources")
	}
	return fallbacks, nil
}

func loadRules(path string) (map[string]model.ExtractionRule, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			zap.L().Info("registry: no extraction rules file", zap.String("path", path))
			return nil, nil
		}
		return nil, eris.Wrapf(err, "registry: read extraction rules %s", path)
	}

	var rules map[string]model.ExtractionRule
	if err := json.Unmarshal(raw, &rules); err != nil {
		return nil, eris.Wrap(err, "registry: parse extraction rules")
	}

	for id, rule := range rules {
		rules[id] = compileRule(id, rule)
	}
	return rules, nil
}

// compileRule pre-compiles a buyer's date patterns and geography hint
// alternation. Patterns that fail to compile are skipped with a warning
// rather than failing the load; rule order among the survivors is kept.
func compileRule(buyerID string, rule model.ExtractionRule) model.ExtractionRule {
	for _, pat := range rule.DatePatterns {
		re, err := regexp.Compile("(?i)" + pat)
		if err != nil {
			zap.L().Warn("registry: skipping invalid date pattern",
				zap.String("buyer", buyerID),
				zap.String("pattern", pat),
				zap.Error(err),
			)
			continue
		}
		rule.CompiledDates = append(rule.CompiledDates, re)
	}

	if len(rule.GeographyHints) > 0 {
		quoted := make([]string, 0, len(rule.GeographyHints))
		for _, h := range rule.GeographyHints {
			quoted = append(quoted, regexp.QuoteMeta(h))
		}
		re, err := regexp.Compile(`(?i)\b(` + strings.Join(quoted, "|") + `)\b`)
		if err != nil {
			zap.L().Warn("registry: skipping geography hints",
				zap.String("buyer", buyerID),
				zap.Error(err),
			)
		} else {
			rule.GeographyRe = re
		}
	}

	return rule
}
