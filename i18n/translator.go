package i18n

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Translator retrieves localized messages for Violation codes. data provides
// optional message parameters (for example, "param" for a rule's argument).
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	if m, ok := bundles[t.lang]; ok {
		if tmpl, ok := m[code]; ok {
			return interpolate(tmpl, data)
		}
	}
	return interpolate(builtin(t.lang, code), data)
}

func builtin(lang, code string) string {
	switch lang {
	case "ja":
		switch code {
		case "required":
			return "必須です"
		case "min":
			return "{param} 以上でなければなりません"
		case "max":
			return "{param} 以下でなければなりません"
		case "len":
			return "長さは {param} でなければなりません"
		case "gt":
			return "{param} より大きくなければなりません"
		case "gte":
			return "{param} 以上でなければなりません"
		case "lt":
			return "{param} より小さくなければなりません"
		case "lte":
			return "{param} 以下でなければなりません"
		case "email":
			return "メールアドレスが不正です"
		case "uuid":
			return "UUID が不正です"
		case "url":
			return "URL が不正です"
		case "oneof":
			return "{param} のいずれかでなければなりません"
		}
	default: // "en"
		switch code {
		case "required":
			return "is required"
		case "min":
			return "must be at least {param}"
		case "max":
			return "must be at most {param}"
		case "len":
			return "must have length {param}"
		case "gt":
			return "must be greater than {param}"
		case "gte":
			return "must be at least {param}"
		case "lt":
			return "must be less than {param}"
		case "lte":
			return "must be at most {param}"
		case "email":
			return "must be a valid email address"
		case "uuid":
			return "must be a valid UUID"
		case "url":
			return "must be a valid URL"
		case "oneof":
			return "must be one of {param}"
		}
	}
	return "failed rule " + code
}

// interpolate substitutes {key} placeholders with data values.
func interpolate(tmpl string, data map[string]string) string {
	if len(data) == 0 || !strings.ContainsRune(tmpl, '{') {
		return tmpl
	}
	out := tmpl
	for k, v := range data {
		out = strings.ReplaceAll(out, "{"+k+"}", v)
	}
	return out
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// bundles holds templates loaded via LoadBundle, checked before the built-in
// dictionaries. Keyed by language, then code.
var bundles = map[string]map[string]string{}

// SetLanguage switches the built-in Translator language ("en"/"ja", plus any
// language a loaded bundle provides).
func SetLanguage(lang string) {
	if lang == "" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// LoadBundle merges a YAML message bundle (a table of language, then code,
// then template) over the built-in dictionaries:
//
//	en:
//	  required: must not be blank
//	de:
//	  required: darf nicht leer sein
//
// Bundles are meant to be loaded during startup, before validation begins.
func LoadBundle(src []byte) error {
	var b map[string]map[string]string
	if err := yaml.Unmarshal(src, &b); err != nil {
		return fmt.Errorf("i18n: decode bundle: %w", err)
	}
	for lang, table := range b {
		m := bundles[lang]
		if m == nil {
			m = map[string]string{}
			bundles[lang] = m
		}
		for code, tmpl := range table {
			m[code] = tmpl
		}
	}
	return nil
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
