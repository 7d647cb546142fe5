// Package i18n provides localized email copy for notification rendering.
// Keys are dot paths into a nested bundle; values interpolate {{var}} tokens.
// Unknown languages and missing keys fall back to the default language, and a
// key missing in every bundle translates to itself.
package i18n

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultLanguage is the fallback bundle for unknown languages and keys.
const DefaultLanguage = "en"

var varPattern = regexp.MustCompile(`\{\{\s*([\w.]+)\s*\}\}`)

// Tip is a titled suggestion block used by the empty daily-summary layout.
type Tip struct {
	Title       string
	Description string
}

// Localizer resolves translation keys for one language.
type Localizer struct {
	language string
	bundle   map[string]any
	fallback map[string]any
}

// New creates a Localizer for the given language tag. Region subtags are
// stripped ("tr-TR" resolves to "tr"); unsupported languages resolve to the
// default.
func New(language string) *Localizer {
	lang := normalize(language)
	return &Localizer{
		language: lang,
		bundle:   bundles[lang],
		fallback: bundles[DefaultLanguage],
	}
}

// Language returns the resolved language code.
func (l *Localizer) Language() string {
	return l.language
}

// Translate resolves a key to its localized string, interpolating variables.
// Array values join with ", ". A key absent from both bundles returns the key
// itself so broken copy is visible rather than silent.
func (l *Localizer) Translate(key string, vars map[string]any) string {
	value := l.lookup(key)
	switch v := value.(type) {
	case string:
		return interpolate(v, vars)
	case []string:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = interpolate(item, vars)
		}
		return strings.Join(parts, ", ")
	default:
		return key
	}
}

// List resolves a key to a localized string slice, interpolating variables.
// Non-array values yield nil.
func (l *Localizer) List(key string, vars map[string]any) []string {
	value := l.lookup(key)
	items, ok := value.([]string)
	if !ok {
		return nil
	}
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = interpolate(item, vars)
	}
	return out
}

// Tips resolves a key to its tip blocks, or nil when the key holds none.
func (l *Localizer) Tips(key string) []Tip {
	value := l.lookup(key)
	tips, ok := value.([]Tip)
	if !ok {
		return nil
	}
	return tips
}

func (l *Localizer) lookup(key string) any {
	path := strings.Split(key, ".")
	if v := walk(l.bundle, path); v != nil {
		return v
	}
	return walk(l.fallback, path)
}

func walk(tree map[string]any, path []string) any {
	var current any = tree
	for _, segment := range path {
		node, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current, ok = node[segment]
		if !ok {
			return nil
		}
	}
	return current
}

func interpolate(template string, vars map[string]any) string {
	if len(vars) == 0 {
		return template
	}
	return varPattern.ReplaceAllStringFunc(template, func(match string) string {
		name := varPattern.FindStringSubmatch(match)[1]
		value, ok := vars[name]
		if !ok || value == nil {
			return match
		}
		return fmt.Sprintf("%v", value)
	})
}

func normalize(language string) string {
	if language == "" {
		return DefaultLanguage
	}
	lang := strings.ToLower(language)
	if primary, _, found := strings.Cut(lang, "-"); found {
		lang = primary
	}
	if _, ok := bundles[lang]; ok {
		return lang
	}
	return DefaultLanguage
}
