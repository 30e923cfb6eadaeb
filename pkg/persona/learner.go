package persona

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"personatranslator/pkg/llm"
	"personatranslator/pkg/logger"
	"personatranslator/pkg/sheet"
)

// learnTemperature biases inference toward consistency over creativity; it
// is deliberately lower than the translation default.
const learnTemperature = 0.2

// DefaultMaxLinesPerCharacter caps the sample block sent per character.
const DefaultMaxLinesPerCharacter = 30

// LearnOptions configures a learning run over a sample table.
type LearnOptions struct {
	CharColumn   string // column holding the character identifier
	SourceColumn string // column holding the source text
	TargetColumn string // column holding the already-translated text
	TargetLang   string // "en" or "id", matching the target column
	// MaxLinesPerCharacter truncates each character's sample block.
	// Zero means DefaultMaxLinesPerCharacter.
	MaxLinesPerCharacter int
	// MaxRows limits how many leading rows are considered. Zero means all.
	MaxRows int
}

// Learner infers persona profiles from translated sample lines.
type Learner struct {
	gateway llm.Gateway
	logger  *logger.Logger
}

// NewLearner creates a Learner.
func NewLearner(gateway llm.Gateway, log *logger.Logger) *Learner {
	return &Learner{gateway: gateway, logger: log}
}

// Learn groups the table's rows by character, asks the backend for a persona
// profile per character, and returns the validated results. A malformed model
// response never aborts the run: the affected character gets the fallback
// profile instead.
func (l *Learner) Learn(ctx context.Context, table *sheet.Table, opts LearnOptions) (map[string]Profile, error) {
	if !KnownLanguage(opts.TargetLang) {
		return nil, fmt.Errorf("unsupported target language: %q", opts.TargetLang)
	}
	if err := table.RequireColumns(opts.CharColumn, opts.SourceColumn, opts.TargetColumn); err != nil {
		return nil, err
	}

	maxLines := opts.MaxLinesPerCharacter
	if maxLines <= 0 {
		maxLines = DefaultMaxLinesPerCharacter
	}

	charIdx := table.ColumnIndex(opts.CharColumn)
	tgtIdx := table.ColumnIndex(opts.TargetColumn)

	rowCount := table.Len()
	if opts.MaxRows > 0 && opts.MaxRows < rowCount {
		rowCount = opts.MaxRows
	}

	// Group target lines by character, keeping first-seen character order so
	// repeated runs issue calls in a stable sequence.
	var order []string
	samples := make(map[string][]string)
	for i := 0; i < rowCount; i++ {
		characterID := strings.TrimSpace(table.Get(i, charIdx))
		if characterID == "" {
			continue
		}
		if _, seen := samples[characterID]; !seen {
			order = append(order, characterID)
			samples[characterID] = nil
		}
		line := strings.TrimSpace(table.Get(i, tgtIdx))
		if line == "" || len(samples[characterID]) >= maxLines {
			continue
		}
		samples[characterID] = append(samples[characterID], line)
	}

	results := make(map[string]Profile)
	for _, characterID := range order {
		lines := samples[characterID]
		if len(lines) == 0 {
			l.logger.Debugf("character %q has no usable sample lines, skipping", characterID)
			continue
		}

		if err := ctx.Err(); err != nil {
			return results, err
		}

		user := buildLearnPrompt(characterID, opts.TargetLang, maxLines, lines)
		raw, err := l.gateway.Complete(ctx, learnSystemPrompt, user, learnTemperature)
		if err != nil {
			l.logger.Warnf("persona inference failed for %q, using fallback: %v", characterID, err)
			results[characterID] = Fallback(characterID, opts.TargetLang)
			continue
		}

		profile, err := parseProfile(raw, characterID, opts.TargetLang)
		if err != nil {
			l.logger.Warnf("persona response for %q did not validate, using fallback: %v", characterID, err)
			results[characterID] = Fallback(characterID, opts.TargetLang)
			continue
		}

		results[characterID] = profile
		l.logger.Infof("learned persona for %q (%d sample lines)", characterID, len(lines))
	}

	return results, nil
}

const learnSystemPrompt = "You are a localization style analyst. " +
	"Given several translated dialog lines from ONE game character, infer their speaking style."

func buildLearnPrompt(characterID, targetLang string, maxLines int, lines []string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "You will be given up to %d lines already translated to %s.\n",
		maxLines, LanguageName(targetLang))
	sb.WriteString("From these, infer a concise persona profile capturing tone, quirks, formality, pronoun choices, punctuation habits, and recurring lexical preferences.\n\n")

	sb.WriteString("Return STRICT JSON that validates against this schema:\n\n")
	sb.WriteString(profileSchemaJSON)
	sb.WriteString("\n\n")

	fmt.Fprintf(&sb, "Character ID: %s\n", characterID)
	fmt.Fprintf(&sb, "Target language code: %s\n\n", targetLang)

	sb.WriteString("Translated sample lines:\n")
	for _, line := range lines {
		fmt.Fprintf(&sb, "- %s\n", line)
	}

	sb.WriteString("\nImportant:\n")
	sb.WriteString("- Base your analysis ONLY on these translated lines.\n")
	sb.WriteString("- Keep it short and concrete; no generic fluff.\n")
	sb.WriteString("- If a field is unknown, leave it empty or minimal.\n")
	fmt.Fprintf(&sb, "- Fill style_rules_en only when the target language is English and style_rules_%s only when it is %s.\n",
		LangIndonesian, LanguageName(LangIndonesian))
	sb.WriteString("- Output ONLY the JSON object, nothing else.")

	return sb.String()
}

// parseProfile recovers the JSON object from the model's answer by slicing
// from the first '{' to the last '}'. Stricter parsing would reject otherwise
// recoverable responses wrapped in prose or code fences, so the lenient
// heuristic is kept on purpose. The character id and target language are
// force-set from ground truth; the model's echo of them is never trusted.
func parseProfile(raw, characterID, targetLang string) (Profile, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end < start {
		return Profile{}, fmt.Errorf("no JSON object found in response")
	}

	var profile Profile
	if err := json.Unmarshal([]byte(raw[start:end+1]), &profile); err != nil {
		return Profile{}, fmt.Errorf("invalid JSON: %w", err)
	}

	profile.CharacterID = characterID
	profile.TargetLang = targetLang

	if err := profile.Validate(); err != nil {
		return Profile{}, err
	}
	return profile, nil
}
