// Package filler walks a dialog table and fills the untranslated target
// cells, one gateway call per row, with persona-conditioned prompts. Rows
// fail independently: a backend error on one line never aborts the batch.
package filler

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"personatranslator/pkg/llm"
	"personatranslator/pkg/logger"
	"personatranslator/pkg/normalizer"
	"personatranslator/pkg/persona"
	"personatranslator/pkg/sheet"
)

// CheckpointSuffix marks the sibling file holding partially filled output.
const CheckpointSuffix = ".work"

// CheckpointPath returns the checkpoint path for an output path.
func CheckpointPath(outputPath string) string {
	return outputPath + CheckpointSuffix
}

// Options configures a fill run.
type Options struct {
	SourceColumn string
	TargetColumn string
	// CharColumn selects the persona per row. When empty, CharacterID is
	// used for every row.
	CharColumn  string
	CharacterID string
	TargetLang  string
	// Overwrite replaces non-blank target cells instead of skipping them.
	Overwrite bool
	// Normalize applies KBBI normalization to Indonesian output.
	Normalize bool
	CustomMap map[string]string
	// Sleep is an optional fixed delay after each gateway call, for external
	// rate limits.
	Sleep time.Duration
	// AutosaveEvery writes the checkpoint after every N filled rows. Zero
	// disables periodic autosaving; the interrupt checkpoint in Run is
	// written regardless.
	AutosaveEvery int
	// ProgressEvery logs progress after every N processed rows.
	ProgressEvery int
	// CheckpointPath receives the periodic autosaves. Set by Run.
	CheckpointPath string
}

// Report summarizes a fill run.
type Report struct {
	Processed int
	Filled    int
	Errors    int
}

// Filler fills untranslated rows using a persona store and a gateway.
type Filler struct {
	gateway     llm.Gateway
	personas    map[string]persona.Profile
	temperature float64
	logger      *logger.Logger
}

// New creates a Filler. personas may be nil; rows without a matching profile
// get a neutral persona.
func New(gateway llm.Gateway, personas map[string]persona.Profile, temperature float64, log *logger.Logger) *Filler {
	return &Filler{
		gateway:     gateway,
		personas:    personas,
		temperature: temperature,
		logger:      log,
	}
}

// Run loads the input table, fills it, and writes the output. On success the
// checkpoint file is removed; on interruption the partially filled table is
// flushed to the checkpoint and the context error is returned so the caller
// can tell the user the run is resumable.
func (f *Filler) Run(ctx context.Context, inputPath, outputPath string, opts Options) (Report, error) {
	table, err := sheet.Load(inputPath)
	if err != nil {
		return Report{}, err
	}

	if opts.CheckpointPath == "" {
		opts.CheckpointPath = CheckpointPath(outputPath)
	}

	report, fillErr := f.Fill(ctx, table, opts)
	if fillErr != nil {
		if ctx.Err() != nil {
			// Best-effort checkpoint so the filled rows survive the interrupt.
			if saveErr := sheet.Save(table, opts.CheckpointPath); saveErr != nil {
				f.logger.Errorf("failed to write checkpoint: %v", saveErr)
			} else {
				f.logger.Infof("checkpoint written: %s (filled %d)", opts.CheckpointPath, report.Filled)
			}
		}
		return report, fillErr
	}

	if err := sheet.Save(table, outputPath); err != nil {
		return report, err
	}
	if err := os.Remove(opts.CheckpointPath); err != nil && !os.IsNotExist(err) {
		f.logger.Warnf("failed to remove checkpoint %s: %v", opts.CheckpointPath, err)
	}

	f.logger.Infof("done: filled %d cell(s), %d error(s), wrote %s", report.Filled, report.Errors, outputPath)
	return report, nil
}

// Fill translates the table in place. Column validation happens before the
// first gateway call.
func (f *Filler) Fill(ctx context.Context, table *sheet.Table, opts Options) (Report, error) {
	var report Report

	if !persona.KnownLanguage(opts.TargetLang) {
		return report, fmt.Errorf("unsupported target language: %q", opts.TargetLang)
	}

	required := []string{opts.SourceColumn}
	if opts.CharColumn != "" {
		required = append(required, opts.CharColumn)
	}
	if err := table.RequireColumns(required...); err != nil {
		return report, err
	}

	srcIdx := table.ColumnIndex(opts.SourceColumn)
	tgtIdx := table.EnsureColumn(opts.TargetColumn)
	charIdx := -1
	if opts.CharColumn != "" {
		charIdx = table.ColumnIndex(opts.CharColumn)
	}

	total := table.Len()
	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Processed++

		source := strings.TrimSpace(table.Get(i, srcIdx))
		if source == "" {
			continue
		}

		existing := strings.TrimSpace(table.Get(i, tgtIdx))
		if existing != "" && !opts.Overwrite {
			continue
		}

		characterID := opts.CharacterID
		if charIdx >= 0 {
			characterID = strings.TrimSpace(table.Get(i, charIdx))
		}

		prompt := buildUserPrompt(source, f.personaFor(characterID), opts.TargetLang)
		out, err := f.gateway.Complete(ctx, systemPrompt, prompt, f.temperature)
		if err != nil {
			report.Errors++
			f.logger.Errorf("[%d/%d] translation failed: %v", i+1, total, err)
			continue
		}

		if opts.Normalize && opts.TargetLang == persona.LangIndonesian {
			out = safeNormalize(out, opts.CustomMap, f.logger)
		}

		table.Set(i, tgtIdx, out)
		report.Filled++

		if opts.AutosaveEvery > 0 && opts.CheckpointPath != "" && report.Filled%opts.AutosaveEvery == 0 {
			if err := sheet.Save(table, opts.CheckpointPath); err != nil {
				f.logger.Warnf("autosave failed: %v", err)
			} else {
				f.logger.Infof("autosave: wrote checkpoint %s (filled %d)", opts.CheckpointPath, report.Filled)
			}
		}

		if opts.Sleep > 0 {
			select {
			case <-time.After(opts.Sleep):
			case <-ctx.Done():
				return report, ctx.Err()
			}
		}

		if opts.ProgressEvery > 0 && report.Processed%opts.ProgressEvery == 0 {
			f.logger.Infof("progress: %d/%d processed, %d filled", report.Processed, total, report.Filled)
		}
	}

	return report, nil
}

func (f *Filler) personaFor(characterID string) persona.Profile {
	if p, ok := f.personas[characterID]; ok {
		return p
	}
	return persona.Profile{}
}

// safeNormalize never drops a translation: if normalization fails the raw
// text is kept.
func safeNormalize(text string, customMap map[string]string, log *logger.Logger) (out string) {
	out = text
	defer func() {
		if r := recover(); r != nil {
			log.Warnf("normalization failed, keeping raw translation: %v", r)
		}
	}()
	return normalizer.Normalize(text, customMap)
}
