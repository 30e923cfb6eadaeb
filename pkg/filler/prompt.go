package filler

import (
	"fmt"
	"strings"

	"personatranslator/pkg/persona"
)

// systemPrompt is shared by every translation request in a run.
const systemPrompt = "You are a professional game localization translator.\n" +
	"Preserve placeholders/tags exactly (e.g., {NICKNAME}, {PLAYER_NAME}, <color=...> ... </color>).\n" +
	"Follow the character persona and mimic tone and quirks.\n" +
	"Output only the translation."

// buildUserPrompt embeds the persona guidance and the placeholder rules
// around the source line.
func buildUserPrompt(source string, p persona.Profile, targetLang string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Translate from Chinese (Simplified) to %s.\n\n", persona.LanguageName(targetLang))

	sb.WriteString("Persona:\n")
	guidance := personaGuidance(p)
	if len(guidance) == 0 {
		sb.WriteString("- Use neutral tone\n")
	} else {
		for _, line := range guidance {
			fmt.Fprintf(&sb, "- %s\n", line)
		}
	}

	sb.WriteString("\nUntranslatable tokens (preserve verbatim): patterns like {NICKNAME}, {PLAYER_NAME},\n")
	sb.WriteString("and tags like <color=...> ... </color>. Do not remove or translate them.\n\n")

	fmt.Fprintf(&sb, "Text:\n%s\n\n", source)

	sb.WriteString("Requirements:\n")
	sb.WriteString("1) Preserve placeholders/tags exactly.\n")
	sb.WriteString("2) Keep sentences concise for UI.\n")
	sb.WriteString("3) Match persona tone/quirks.\n")
	sb.WriteString("4) Output only translated text.")

	return sb.String()
}

// personaGuidance flattens the non-empty persona fields into short labeled
// lines. An empty slice means the caller should fall back to a neutral-tone
// instruction instead of emitting an empty block.
func personaGuidance(p persona.Profile) []string {
	var lines []string

	if p.Tone != "" {
		lines = append(lines, "Tone: "+p.Tone)
	}
	if p.Formality != "" {
		lines = append(lines, "Formality: "+p.Formality)
	}
	if p.Pronouns != "" {
		lines = append(lines, "Pronouns: "+p.Pronouns)
	}
	if p.PunctuationHabits != "" {
		lines = append(lines, "Punctuation: "+p.PunctuationHabits)
	}
	if len(p.Quirks) > 0 {
		lines = append(lines, "Quirks: "+strings.Join(p.Quirks, ", "))
	}
	if len(p.LexicalPreferences) > 0 {
		lines = append(lines, "Lexical preferences: "+strings.Join(p.LexicalPreferences, ", "))
	}

	if rules := p.StyleRules(); len(rules) > 0 {
		lines = append(lines, "Rules: "+strings.Join(rules, ", "))
	}

	return lines
}
