package reconcile

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/shopspring/decimal"

	"github.com/mvolkov/moneymover/internal/ledger"
	"github.com/mvolkov/moneymover/internal/statement"
)

// Conditions is an optional-field matcher over a statement entry. A nil
// field is a wildcard. A preset with every field nil is malformed and is
// rejected at load time.
type Conditions struct {
	NamePattern *regexp.Regexp       // case-insensitive search over the counterpart name
	Direction   *statement.Direction // exact
	AmountCents *int64               // exact, magnitude
}

func (c Conditions) empty() bool {
	return c.NamePattern == nil && c.Direction == nil && c.AmountCents == nil
}

func (c Conditions) matches(e statement.Entry) bool {
	if c.NamePattern != nil && !c.NamePattern.MatchString(e.Name) {
		return false
	}
	if c.Direction != nil && *c.Direction != e.Direction {
		return false
	}
	if c.AmountCents != nil && *c.AmountCents != e.AmountCents {
		return false
	}
	return true
}

// Label is applied to a statement entry when its preset fires.
type Label struct {
	Note         string
	CategoryName string
	Type         string // ledger.TypeIncome or ledger.TypeExpense
}

// Preset is one user-authored matching rule. Immutable during a session.
type Preset struct {
	Source     string // position in the preset file, for error messages
	Conditions Conditions
	Label      Label
}

// PresetLoadError reports a preset file that could not be read, decoded or
// compiled. Fatal at the input-loading boundary.
type PresetLoadError struct {
	Path string
	Err  error
}

func (e *PresetLoadError) Error() string {
	return fmt.Sprintf("load presets %s: %v", e.Path, e.Err)
}

func (e *PresetLoadError) Unwrap() error { return e.Err }

type presetJSON struct {
	Conditions struct {
		Name      string      `json:"name"`
		Direction string      `json:"direction"`
		Amount    json.Number `json:"amount"`
	} `json:"conditions"`
	Label struct {
		Note         string `json:"note"`
		CategoryName string `json:"category_name"`
		Type         string `json:"type"`
	} `json:"label"`
}

// LoadPresets reads the preset file. The file groups rules into "expenses"
// and "incomes"; the groups are concatenated in file order since conditions
// rarely overlap across them. Regular expressions are compiled here so an
// invalid rule fails fast instead of at first use.
func LoadPresets(path string) ([]Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &PresetLoadError{Path: path, Err: err}
	}
	var file struct {
		Expenses []presetJSON `json:"expenses"`
		Incomes  []presetJSON `json:"incomes"`
	}
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, &PresetLoadError{Path: path, Err: fmt.Errorf("decode json: %w", err)}
	}

	var presets []Preset
	for _, group := range []struct {
		name  string
		rules []presetJSON
	}{{"expenses", file.Expenses}, {"incomes", file.Incomes}} {
		for i, raw := range group.rules {
			source := fmt.Sprintf("%s[%d]", group.name, i)
			p, err := compilePreset(source, raw)
			if err != nil {
				return nil, &PresetLoadError{Path: path, Err: err}
			}
			presets = append(presets, p)
		}
	}
	return presets, nil
}

func compilePreset(source string, raw presetJSON) (Preset, error) {
	p := Preset{Source: source}

	if pat := strings.TrimSpace(raw.Conditions.Name); pat != "" {
		re, err := regexp.Compile("(?i)" + pat)
		if err != nil {
			return Preset{}, fmt.Errorf("%s: compile name pattern %q: %w", source, pat, err)
		}
		p.Conditions.NamePattern = re
	}
	if d := strings.TrimSpace(raw.Conditions.Direction); d != "" {
		dir, err := parsePresetDirection(d)
		if err != nil {
			return Preset{}, fmt.Errorf("%s: %w", source, err)
		}
		p.Conditions.Direction = &dir
	}
	if a := strings.TrimSpace(raw.Conditions.Amount.String()); a != "" {
		d, err := decimal.NewFromString(a)
		if err != nil {
			return Preset{}, fmt.Errorf("%s: parse amount %q: %w", source, a, err)
		}
		shifted := d.Shift(2)
		if !shifted.IsInteger() || shifted.IsNegative() {
			return Preset{}, fmt.Errorf("%s: amount %q is not a whole positive cent value", source, a)
		}
		cents := shifted.IntPart()
		p.Conditions.AmountCents = &cents
	}
	if p.Conditions.empty() {
		return Preset{}, fmt.Errorf("%s: preset has no conditions and would never fire", source)
	}

	p.Label = Label{
		Note:         raw.Label.Note,
		CategoryName: strings.TrimSpace(raw.Label.CategoryName),
		Type:         strings.ToLower(strings.TrimSpace(raw.Label.Type)),
	}
	if p.Label.CategoryName == "" {
		return Preset{}, fmt.Errorf("%s: label has no category_name", source)
	}
	if p.Label.Type != ledger.TypeIncome && p.Label.Type != ledger.TypeExpense {
		return Preset{}, fmt.Errorf("%s: label type %q must be %q or %q", source, raw.Label.Type, ledger.TypeIncome, ledger.TypeExpense)
	}
	return p, nil
}

func parsePresetDirection(s string) (statement.Direction, error) {
	switch strings.ToLower(s) {
	case "debit":
		return statement.Debit, nil
	case "credit":
		return statement.Credit, nil
	}
	return "", fmt.Errorf("unknown direction %q", s)
}

// InvalidPresetCategoryError marks a preset whose label references a
// category missing from the wallet taxonomy. Fatal at session start: the
// session refuses to begin rather than match against an unusable rule.
type InvalidPresetCategoryError struct {
	Preset     Preset
	Available  []string
	Suggestion string
}

func (e *InvalidPresetCategoryError) Error() string {
	msg := fmt.Sprintf("preset %s: category %q not found among %s categories (%s)",
		e.Preset.Source, e.Preset.Label.CategoryName, e.Preset.Label.Type,
		strings.Join(e.Available, ", "))
	if e.Suggestion != "" {
		msg += fmt.Sprintf("; did you mean %q?", e.Suggestion)
	}
	return msg
}

// ValidatePresets checks every preset label against the taxonomy. The first
// offending preset is reported together with the available category names
// and the nearest one by edit distance.
func ValidatePresets(presets []Preset, taxonomy Taxonomy) error {
	for _, p := range presets {
		if _, ok := taxonomy.Lookup(p.Label.CategoryName, p.Label.Type); ok {
			continue
		}
		available := taxonomy.Names(p.Label.Type)
		return &InvalidPresetCategoryError{
			Preset:     p,
			Available:  available,
			Suggestion: nearestName(p.Label.CategoryName, available),
		}
	}
	return nil
}

func nearestName(name string, candidates []string) string {
	best, bestDist := "", -1
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(strings.ToLower(name), strings.ToLower(c))
		if bestDist < 0 || d < bestDist {
			best, bestDist = c, d
		}
	}
	// a suggestion further away than half the name is noise
	if bestDist < 0 || bestDist > len(name)/2+1 {
		return ""
	}
	return best
}

// Taxonomy is the wallet's category tree, flattened for lookup by name and
// transaction type.
type Taxonomy struct {
	categories []ledger.Category
}

func NewTaxonomy(cats []ledger.Category) Taxonomy {
	return Taxonomy{categories: cats}
}

// ByType returns categories of the given type, parents before children,
// alphabetical within each level.
func (t Taxonomy) ByType(typ string) []ledger.Category {
	var out []ledger.Category
	for _, c := range t.categories {
		if c.Type == typ {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := out[i].ParentID != "", out[j].ParentID != ""
		if pi != pj {
			return !pi
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Names returns the category names of the given type, in ByType order.
func (t Taxonomy) Names(typ string) []string {
	cats := t.ByType(typ)
	names := make([]string, 0, len(cats))
	for _, c := range cats {
		names = append(names, c.Name)
	}
	return names
}

// Lookup finds a category by exact name for the given type.
func (t Taxonomy) Lookup(name, typ string) (ledger.Category, bool) {
	for _, c := range t.categories {
		if c.Type == typ && c.Name == name {
			return c, true
		}
	}
	return ledger.Category{}, false
}
