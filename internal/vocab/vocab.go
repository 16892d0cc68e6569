package vocab

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed vocab.yaml
var defaultVocabYAML []byte

var (
	// ErrNoLocales is returned when a vocabulary document defines no locales
	ErrNoLocales = errors.New("vocabulary defines no locales")
	// ErrUnknownLocale is returned when a requested locale is not defined
	ErrUnknownLocale = errors.New("unknown locale")
)

// document is the on-disk shape of a vocabulary file
type document struct {
	Fallback string                       `yaml:"fallback"`
	Locales  map[string]map[string]string `yaml:"locales"`
}

// Vocabulary maps canonical UI terms to their localized display forms.
// It is loaded once at construction and immutable afterward, so all
// methods are safe for concurrent use.
type Vocabulary struct {
	fallback string
	locales  map[string]map[string]string // locale -> term -> translation
	reverse  map[string]map[string]string // locale -> folded translation -> term
}

// Load reads a vocabulary from the YAML file at path. An empty path loads
// the vocabulary embedded in the binary.
func Load(path string) (*Vocabulary, error) {
	if path == "" {
		return Parse(defaultVocabYAML)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read vocabulary: %w", err)
	}
	return Parse(data)
}

// Parse builds a Vocabulary from YAML data
func Parse(data []byte) (*Vocabulary, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse vocabulary: %w", err)
	}
	if len(doc.Locales) == 0 {
		return nil, ErrNoLocales
	}

	v := &Vocabulary{
		fallback: normalizeLocale(doc.Fallback),
		locales:  make(map[string]map[string]string, len(doc.Locales)),
		reverse:  make(map[string]map[string]string, len(doc.Locales)),
	}

	for locale, terms := range doc.Locales {
		code := normalizeLocale(locale)
		if code == "" {
			continue
		}
		fwd := make(map[string]string, len(terms))
		rev := make(map[string]string, len(terms))
		for term, translation := range terms {
			key := strings.ToLower(strings.TrimSpace(term))
			val := strings.TrimSpace(translation)
			if key == "" || val == "" {
				continue
			}
			fwd[key] = val
			rev[strings.ToLower(val)] = key
		}
		v.locales[code] = fwd
		v.reverse[code] = rev
	}
	if len(v.locales) == 0 {
		return nil, ErrNoLocales
	}

	if v.fallback == "" || v.locales[v.fallback] == nil {
		// Degenerate documents still translate through whichever locale
		// sorts first, so behavior stays deterministic.
		v.fallback = v.Locales()[0]
	}
	return v, nil
}

// Translate returns the display form of a canonical term in the requested
// locale. The lookup walks the fallback chain: exact locale, base language,
// fallback locale. When no entry exists anywhere, the term itself is
// returned with ok false.
func (v *Vocabulary) Translate(term, locale string) (translation string, ok bool) {
	key := strings.ToLower(strings.TrimSpace(term))
	if key == "" {
		return term, false
	}
	for _, code := range v.chain(locale) {
		if t, found := v.locales[code][key]; found {
			return t, true
		}
	}
	return term, false
}

// LookupTerm resolves a localized display form back to its canonical term.
// The requested locale is searched first; an empty locale searches every
// locale in sorted order.
func (v *Vocabulary) LookupTerm(translation, locale string) (term string, ok bool) {
	key := strings.ToLower(strings.TrimSpace(translation))
	if key == "" {
		return "", false
	}

	if locale != "" {
		for _, code := range v.chain(locale) {
			if t, found := v.reverse[code][key]; found {
				return t, true
			}
		}
		return "", false
	}

	for _, code := range v.Locales() {
		if t, found := v.reverse[code][key]; found {
			return t, true
		}
	}
	return "", false
}

// HasLocale reports whether the locale (or its base language) is defined
func (v *Vocabulary) HasLocale(locale string) bool {
	for _, code := range v.chain(locale) {
		if code == v.fallback {
			continue
		}
		if _, ok := v.locales[code]; ok {
			return true
		}
	}
	return normalizeLocale(locale) == v.fallback
}

// Fallback returns the locale used when a requested one has no entry
func (v *Vocabulary) Fallback() string {
	return v.fallback
}

// Locales returns the defined locale codes in sorted order
func (v *Vocabulary) Locales() []string {
	codes := make([]string, 0, len(v.locales))
	for code := range v.locales {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Terms returns the canonical terms defined for the fallback locale, sorted
func (v *Vocabulary) Terms() []string {
	terms := make([]string, 0, len(v.locales[v.fallback]))
	for term := range v.locales[v.fallback] {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return terms
}

// chain returns the locale codes to consult, most specific first. A
// regional variant falls back to its base language before the vocabulary
// fallback: pt_br, pt, en.
func (v *Vocabulary) chain(locale string) []string {
	code := normalizeLocale(locale)
	chain := make([]string, 0, 3)
	if code != "" {
		chain = append(chain, code)
		if base, _, found := strings.Cut(code, "_"); found && base != "" {
			chain = append(chain, base)
		}
	}
	if v.fallback != "" && (len(chain) == 0 || chain[len(chain)-1] != v.fallback) {
		chain = append(chain, v.fallback)
	}
	return chain
}

// normalizeLocale folds a locale tag to the lowercase underscore form used
// as a map key: "pt-BR" and "PT_br" both become "pt_br".
func normalizeLocale(locale string) string {
	code := strings.ToLower(strings.TrimSpace(locale))
	return strings.ReplaceAll(code, "-", "_")
}
