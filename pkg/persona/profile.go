// Package persona defines the per-character speaking-style profile, its
// persistent store, and the learner that infers profiles from previously
// translated dialog lines.
package persona

import (
	"fmt"
)

// Supported target language codes.
const (
	LangEnglish    = "en"
	LangIndonesian = "id"
)

// Profile captures one character's speaking style for one target language.
// Field names mirror the persona JSON files produced by earlier runs, so
// existing stores load unchanged.
type Profile struct {
	CharacterID        string   `json:"character_id"`
	TargetLang         string   `json:"target_lang"`
	Tone               string   `json:"tone"`
	Quirks             []string `json:"quirks"`
	Pronouns           string   `json:"pronouns,omitempty"`
	Formality          string   `json:"formality,omitempty"`
	PunctuationHabits  string   `json:"punctuation_habits,omitempty"`
	LexicalPreferences []string `json:"lexical_preferences"`
	StyleRulesEN       []string `json:"style_rules_en"`
	StyleRulesID       []string `json:"style_rules_id"`
	Notes              string   `json:"notes,omitempty"`
}

// Validate checks the profile's invariants: a non-empty character identifier
// and a known target language code.
func (p *Profile) Validate() error {
	if p.CharacterID == "" {
		return fmt.Errorf("character_id must not be empty")
	}
	if p.TargetLang != LangEnglish && p.TargetLang != LangIndonesian {
		return fmt.Errorf("target_lang must be %q or %q, got %q", LangEnglish, LangIndonesian, p.TargetLang)
	}
	return nil
}

// StyleRules returns the rule list for the profile's target language.
func (p *Profile) StyleRules() []string {
	if p.TargetLang == LangIndonesian {
		return p.StyleRulesID
	}
	return p.StyleRulesEN
}

// Fallback returns the minimal profile substituted when inference or parsing
// fails, so downstream consumers never see a partially valid record.
func Fallback(characterID, targetLang string) Profile {
	return Profile{
		CharacterID:        characterID,
		TargetLang:         targetLang,
		Tone:               "neutral",
		Quirks:             []string{},
		LexicalPreferences: []string{},
		StyleRulesEN:       []string{},
		StyleRulesID:       []string{},
	}
}

// LanguageName returns the human name for a target language code.
func LanguageName(code string) string {
	if code == LangIndonesian {
		return "Indonesian"
	}
	return "English"
}

// KnownLanguage reports whether code is a supported target language.
func KnownLanguage(code string) bool {
	return code == LangEnglish || code == LangIndonesian
}

// profileSchemaJSON is the schema embedded in the learning prompt so the
// model knows the exact shape its JSON answer must validate against.
const profileSchemaJSON = `{
  "title": "PersonaProfile",
  "type": "object",
  "properties": {
    "character_id": {"type": "string"},
    "target_lang": {"type": "string", "pattern": "^(en|id)$"},
    "tone": {"type": "string"},
    "quirks": {"type": "array", "items": {"type": "string"}},
    "pronouns": {"type": ["string", "null"]},
    "formality": {"type": ["string", "null"]},
    "punctuation_habits": {"type": ["string", "null"]},
    "lexical_preferences": {"type": "array", "items": {"type": "string"}},
    "style_rules_en": {"type": "array", "items": {"type": "string"}},
    "style_rules_id": {"type": "array", "items": {"type": "string"}},
    "notes": {"type": ["string", "null"]}
  },
  "required": ["character_id", "target_lang", "tone"]
}`
