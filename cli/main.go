package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"personatranslator/config"
	"personatranslator/pkg/filler"
	"personatranslator/pkg/llm"
	"personatranslator/pkg/logger"
	"personatranslator/pkg/normalizer"
	"personatranslator/pkg/persona"
	"personatranslator/pkg/sheet"

	"github.com/spf13/cobra"
)

var log = logger.New()

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := newRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "personatranslator",
		Short: "Persona-driven game dialog localization (zh-CN → en/id)",
		Long: "personatranslator learns per-character speaking-style profiles from\n" +
			"previously translated dialog lines and uses them to fill untranslated\n" +
			"rows in a spreadsheet through an LLM backend.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				log.SetLevel(logger.DEBUG)
			}
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newLearnCmd())
	root.AddCommand(newFillCmd())
	root.AddCommand(newNormalizeCmd())
	return root
}

func newLearnCmd() *cobra.Command {
	var (
		input       string
		charCol     string
		charID      string
		srcCol      string
		tgtCol      string
		lang        string
		maxLines    int
		maxRows     int
		personaPath string
	)

	cmd := &cobra.Command{
		Use:   "learn",
		Short: "Learn persona profiles from already-translated sample rows",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			table, err := sheet.Load(input)
			if err != nil {
				return err
			}

			// A fixed --char-id treats the whole file as one character, the
			// usual case for an unreleased character's training sheet.
			if charID != "" {
				idx := table.EnsureColumn(charCol)
				for i := 0; i < table.Len(); i++ {
					table.Set(i, idx, charID)
				}
			}

			gateway, err := llm.New(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}

			learner := persona.NewLearner(gateway, log)
			profiles, err := learner.Learn(cmd.Context(), table, persona.LearnOptions{
				CharColumn:           charCol,
				SourceColumn:         srcCol,
				TargetColumn:         tgtCol,
				TargetLang:           lang,
				MaxLinesPerCharacter: maxLines,
				MaxRows:              maxRows,
			})
			if err != nil {
				return err
			}
			if len(profiles) == 0 {
				log.Warnf("no usable sample lines found, nothing learned")
				return nil
			}

			path := personaPath
			if path == "" {
				path = defaultPersonaPath(lang)
			}

			// Accumulate across runs: new characters are added, re-learned
			// characters replace their old profiles.
			if existing, err := persona.LoadProfiles(path); err == nil {
				profiles = persona.Merge(existing, profiles)
			}

			if err := persona.SaveProfiles(profiles, path); err != nil {
				return err
			}
			log.Infof("saved %d persona(s) to %s", len(profiles), path)
			return nil
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "path to .xlsx/.csv sample sheet (required)")
	cmd.Flags().StringVar(&charCol, "char-col", "character_id", "character identifier column")
	cmd.Flags().StringVar(&charID, "char-id", "", "treat the whole file as this single character")
	cmd.Flags().StringVar(&srcCol, "src-col", "简体中文 zh-CN", "Chinese source column")
	cmd.Flags().StringVar(&tgtCol, "tgt-col", "印尼语 id-ID", "translated column used for style learning")
	cmd.Flags().StringVar(&lang, "lang", "id", `target language code ("en" or "id")`)
	cmd.Flags().IntVar(&maxLines, "max-lines", persona.DefaultMaxLinesPerCharacter, "sample lines per character")
	cmd.Flags().IntVar(&maxRows, "max-rows", 0, "limit rows considered (0 = all)")
	cmd.Flags().StringVar(&personaPath, "personas", "", "persona JSON path (default data/personas_learned_<lang>.json)")
	cobra.CheckErr(cmd.MarkFlagRequired("input"))
	return cmd
}

func newFillCmd() *cobra.Command {
	var (
		input         string
		output        string
		charCol       string
		charID        string
		srcCol        string
		tgtCol        string
		lang          string
		personaPath   string
		overwrite     bool
		sleepSec      float64
		kbbi          bool
		kbbiJSON      string
		autosaveEvery int
		progressEvery int
	)

	cmd := &cobra.Command{
		Use:   "fill",
		Short: "Fill untranslated rows using learned personas",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			outputPath := output
			if outputPath == "" {
				outputPath = defaultOutputPath(input)
			}

			path := personaPath
			if path == "" {
				path = defaultPersonaPath(lang)
			}
			personas, err := persona.LoadProfiles(path)
			if err != nil {
				log.Warnf("persona file not loaded (%v), using neutral persona", err)
				personas = nil
			}

			var customMap map[string]string
			if kbbiJSON != "" {
				customMap, err = normalizer.LoadCustomMap(kbbiJSON)
				if err != nil {
					return err
				}
			}

			gateway, err := llm.New(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}

			f := filler.New(gateway, personas, cfg.LLM.Temperature, log)
			report, err := f.Run(cmd.Context(), input, outputPath, filler.Options{
				SourceColumn:  srcCol,
				TargetColumn:  tgtCol,
				CharColumn:    charCol,
				CharacterID:   charID,
				TargetLang:    lang,
				Overwrite:     overwrite,
				Normalize:     kbbi,
				CustomMap:     customMap,
				Sleep:         time.Duration(sleepSec * float64(time.Second)),
				AutosaveEvery: autosaveEvery,
				ProgressEvery: progressEvery,
			})
			if err != nil {
				if errors.Is(err, context.Canceled) {
					log.Infof("interrupted after filling %d row(s); progress saved to %s", report.Filled, filler.CheckpointPath(outputPath))
					log.Infof("re-run later: already-filled cells are skipped unless --overwrite is set")
					return nil
				}
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "path to .xlsx/.csv dialog sheet (required)")
	cmd.Flags().StringVar(&output, "output", "", "output path (default <input>_out.<ext>)")
	cmd.Flags().StringVar(&charCol, "char-col", "", "per-row character identifier column")
	cmd.Flags().StringVar(&charID, "char-id", "", "character id used for every row")
	cmd.Flags().StringVar(&srcCol, "src-col", "简体中文 zh-CN", "Chinese source column")
	cmd.Flags().StringVar(&tgtCol, "tgt-col", "印尼语 id-ID", "target column to fill")
	cmd.Flags().StringVar(&lang, "lang", "id", `target language code ("en" or "id")`)
	cmd.Flags().StringVar(&personaPath, "personas", "", "persona JSON path (default data/personas_learned_<lang>.json)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "overwrite non-empty target cells")
	cmd.Flags().Float64Var(&sleepSec, "sleep", 0, "seconds to sleep between API calls")
	cmd.Flags().BoolVar(&kbbi, "kbbi", false, "apply KBBI normalization to Indonesian output")
	cmd.Flags().StringVar(&kbbiJSON, "kbbi-json", "", "custom JSON normalization map")
	cmd.Flags().IntVar(&autosaveEvery, "autosave-every", 0, "autosave checkpoint every N filled rows (0 = off)")
	cmd.Flags().IntVar(&progressEvery, "progress-every", 20, "log progress every N processed rows")
	cobra.CheckErr(cmd.MarkFlagRequired("input"))
	return cmd
}

func newNormalizeCmd() *cobra.Command {
	var kbbiJSON string

	cmd := &cobra.Command{
		Use:   "normalize [text]",
		Short: "Rewrite colloquial Indonesian tokens to KBBI forms",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var customMap map[string]string
			if kbbiJSON != "" {
				m, err := normalizer.LoadCustomMap(kbbiJSON)
				if err != nil {
					return err
				}
				customMap = m
			}

			var text string
			if len(args) == 1 {
				text = args[0]
			} else {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				text = string(data)
			}

			fmt.Fprintln(cmd.OutOrStdout(), normalizer.Normalize(strings.TrimRight(text, "\n"), customMap))
			return nil
		},
	}

	cmd.Flags().StringVar(&kbbiJSON, "kbbi-json", "", "custom JSON normalization map")
	return cmd
}

func defaultOutputPath(inputPath string) string {
	ext := filepath.Ext(inputPath)
	base := strings.TrimSuffix(inputPath, ext)
	if ext == "" {
		ext = ".xlsx"
	}
	return base + "_out" + ext
}

func defaultPersonaPath(lang string) string {
	return filepath.Join("data", fmt.Sprintf("personas_learned_%s.json", lang))
}
