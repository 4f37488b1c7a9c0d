// Package locale holds the static country and currency tables used when
// inferring vendor country and document currency from free text.
//
// The tables ship embedded (defaults.yaml). A YAML file with the same shape
// can be merged on top with LoadFile; entries in the file are appended after
// the defaults, and a currency with an existing code replaces the default one.
package locale

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultTables []byte

var (
	// ErrInvalidTables is returned when a locale file cannot be decoded or
	// contains an entry without a usable country or currency code.
	ErrInvalidTables = errors.New("invalid locale tables")
)

// Country is an EU member state with its display label and local spellings.
type Country struct {
	Code    string   `yaml:"code"`
	Label   string   `yaml:"label"`
	Aliases []string `yaml:"aliases,omitempty"`
}

// Keyword maps a country name or demonym to a country code.
type Keyword struct {
	Keyword string `yaml:"keyword"`
	Code    string `yaml:"code"`
}

// City maps a major city to its country code.
type City struct {
	City string `yaml:"city"`
	Code string `yaml:"code"`
}

// Currency lists the symbols and words that identify a currency.
type Currency struct {
	Code    string   `yaml:"code"`
	Symbols []string `yaml:"symbols,omitempty"`
	Words   []string `yaml:"words,omitempty"`
}

// Tables is the full set of locale data. Treat it as read-only once built.
type Tables struct {
	EUCountries     []Country         `yaml:"eu_countries"`
	ExtraCodes      []string          `yaml:"extra_codes"`
	CodeAliases     map[string]string `yaml:"code_aliases"`
	CountryKeywords []Keyword         `yaml:"country_keywords"`
	Cities          []City            `yaml:"cities"`
	Currencies      []Currency        `yaml:"currencies"`

	codes map[string]string
}

var (
	defaultOnce sync.Once
	defaultTbl  *Tables
)

// Default returns the embedded tables. The result is shared; do not modify it.
func Default() *Tables {
	defaultOnce.Do(func() {
		t, err := Parse(defaultTables)
		if err != nil {
			panic(fmt.Sprintf("locale: embedded tables: %v", err))
		}
		defaultTbl = t
	})
	return defaultTbl
}

// Parse decodes YAML locale tables.
func Parse(data []byte) (*Tables, error) {
	const op = "Parse"

	var t Tables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, ErrInvalidTables, err)
	}
	if err := t.build(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &t, nil
}

// LoadFile merges the YAML file at path on top of the embedded defaults.
// An empty path returns the defaults unchanged.
func LoadFile(path string) (*Tables, error) {
	const op = "LoadFile"

	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read %s: %w", op, path, err)
	}
	override, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", op, path, err)
	}
	merged := Default().merge(override)
	if err := merged.build(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return merged, nil
}

func (t *Tables) merge(o *Tables) *Tables {
	out := &Tables{
		EUCountries:     append(append([]Country{}, t.EUCountries...), o.EUCountries...),
		ExtraCodes:      append(append([]string{}, t.ExtraCodes...), o.ExtraCodes...),
		CodeAliases:     make(map[string]string, len(t.CodeAliases)+len(o.CodeAliases)),
		CountryKeywords: append(append([]Keyword{}, t.CountryKeywords...), o.CountryKeywords...),
		Cities:          append(append([]City{}, t.Cities...), o.Cities...),
	}
	for k, v := range t.CodeAliases {
		out.CodeAliases[k] = v
	}
	for k, v := range o.CodeAliases {
		out.CodeAliases[k] = v
	}

	replaced := make(map[string]Currency, len(o.Currencies))
	for _, c := range o.Currencies {
		replaced[strings.ToUpper(c.Code)] = c
	}
	for _, c := range t.Currencies {
		if r, ok := replaced[strings.ToUpper(c.Code)]; ok {
			out.Currencies = append(out.Currencies, r)
			delete(replaced, strings.ToUpper(c.Code))
			continue
		}
		out.Currencies = append(out.Currencies, c)
	}
	for _, c := range o.Currencies {
		if _, ok := replaced[strings.ToUpper(c.Code)]; ok {
			out.Currencies = append(out.Currencies, c)
		}
	}
	return out
}

func (t *Tables) build() error {
	t.codes = make(map[string]string)
	for _, c := range t.EUCountries {
		if len(c.Code) != 2 {
			return fmt.Errorf("%w: country %q has code %q", ErrInvalidTables, c.Label, c.Code)
		}
		t.codes[strings.ToUpper(c.Code)] = strings.ToUpper(c.Code)
	}
	for _, code := range t.ExtraCodes {
		if len(code) != 2 {
			return fmt.Errorf("%w: extra code %q", ErrInvalidTables, code)
		}
		t.codes[strings.ToUpper(code)] = strings.ToUpper(code)
	}
	for alias, code := range t.CodeAliases {
		t.codes[strings.ToUpper(alias)] = strings.ToUpper(code)
	}
	// An empty entry would match every segment.
	for _, k := range t.CountryKeywords {
		if strings.TrimSpace(k.Keyword) == "" || len(k.Code) != 2 {
			return fmt.Errorf("%w: keyword %q with code %q", ErrInvalidTables, k.Keyword, k.Code)
		}
	}
	for _, c := range t.Cities {
		if strings.TrimSpace(c.City) == "" || len(c.Code) != 2 {
			return fmt.Errorf("%w: city %q with code %q", ErrInvalidTables, c.City, c.Code)
		}
	}
	for _, c := range t.Currencies {
		if len(c.Code) != 3 {
			return fmt.Errorf("%w: currency code %q", ErrInvalidTables, c.Code)
		}
	}
	return nil
}

// CountryCode resolves a bare two-letter token (including aliases such as UK
// or EL) to a country code.
func (t *Tables) CountryCode(token string) (string, bool) {
	code, ok := t.codes[strings.ToUpper(token)]
	return code, ok
}

// CountryNames returns every EU label and alias paired with its code.
func (t *Tables) CountryNames() []Keyword {
	var out []Keyword
	for _, c := range t.EUCountries {
		out = append(out, Keyword{Keyword: c.Label, Code: c.Code})
		for _, a := range c.Aliases {
			out = append(out, Keyword{Keyword: a, Code: c.Code})
		}
	}
	return out
}

// Lookup resolves a whole address segment such as "Nederland" or "Berlin" to
// a country code using every table.
func (t *Tables) Lookup(segment string) (string, bool) {
	s := strings.ToLower(strings.TrimSpace(segment))
	if s == "" {
		return "", false
	}
	if len(s) == 2 {
		if code, ok := t.CountryCode(s); ok {
			return code, true
		}
	}
	for _, k := range t.CountryNames() {
		if strings.ToLower(k.Keyword) == s {
			return k.Code, true
		}
	}
	for _, k := range t.CountryKeywords {
		if strings.ToLower(k.Keyword) == s {
			return k.Code, true
		}
	}
	for _, c := range t.Cities {
		if strings.ToLower(c.City) == s {
			return c.Code, true
		}
	}
	return "", false
}
