package processor

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"codeberg.org/snonux/pimsleur2anki/internal/anki"
	"codeberg.org/snonux/pimsleur2anki/internal/cards"
	"codeberg.org/snonux/pimsleur2anki/internal/cli"
	"codeberg.org/snonux/pimsleur2anki/internal/course"
	"codeberg.org/snonux/pimsleur2anki/internal/practices"
	"codeberg.org/snonux/pimsleur2anki/internal/sound"
	"codeberg.org/snonux/pimsleur2anki/internal/translation"
)

const (
	breakerMaxFailures = 3
	breakerCooldown    = time.Minute
)

// Summary describes the outcome of a run
type Summary struct {
	Cards        int
	Tagged       int
	Untranslated int
	Filled       int
	Decks        int
	Notes        int
	Media        int
	Downloaded   int
	Skipped      int
	PackagePath  string
	CSVPath      string
}

// Processor converts one course export
type Processor struct {
	flags      *cli.Flags
	config     *course.Config
	out        io.Writer
	httpClient *http.Client
	translator translation.Translator
}

// NewProcessor creates a processor for the given settings
func NewProcessor(flags *cli.Flags, config *course.Config) *Processor {
	return &Processor{
		flags:  flags,
		config: config,
		out:    os.Stdout,
	}
}

// SetTranslator overrides the provider used for --fill-translations
func (p *Processor) SetTranslator(t translation.Translator) {
	p.translator = t
}

// SetHTTPClient overrides the client used for sound downloads
func (p *Processor) SetHTTPClient(client *http.Client) {
	p.httpClient = client
}

// Run converts the export into a package
func (p *Processor) Run(ctx context.Context) (*Summary, error) {
	// Fail before downloading anything when the translator cannot be set up
	var translator translation.Translator
	if p.flags.FillTranslations {
		var err error
		if translator, err = p.newTranslator(ctx); err != nil {
			return nil, err
		}
	}

	inputPath := p.config.PracticesPath()
	fmt.Fprintf(p.out, "Loading %s...\n", inputPath)
	doc, err := practices.Load(inputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load lesson export: %w", err)
	}

	fetcher, err := sound.NewFetcher(sound.Options{
		CacheDir:   p.config.SoundsPath(),
		HTTPClient: p.httpClient,
		Output:     p.out,
	})
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(p.out, "Extracting cards from %d units...\n", len(doc.Units))
	collection, err := cards.Extract(ctx, doc, fetcher)
	if err != nil {
		return nil, fmt.Errorf("failed to extract cards: %w", err)
	}

	summary := &Summary{}
	if translator != nil {
		collection, summary.Filled, err = p.fillTranslations(ctx, translator, collection)
		if err != nil {
			return nil, err
		}
	}

	decks := anki.BuildDecks(p.config, collection)
	pkg := anki.Assemble(decks, fetcher.CacheDir())

	if err := os.MkdirAll(p.config.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	summary.PackagePath = p.config.PackagePath()
	fmt.Fprintf(p.out, "\nGenerating Anki package...\n")
	if err := pkg.WriteToFile(summary.PackagePath); err != nil {
		return nil, fmt.Errorf("failed to write package: %w", err)
	}

	if p.flags.CSV {
		summary.CSVPath = strings.TrimSuffix(summary.PackagePath, filepath.Ext(summary.PackagePath)) + ".csv"
		if err := pkg.WriteCSV(summary.CSVPath); err != nil {
			return nil, fmt.Errorf("failed to write CSV: %w", err)
		}
	}

	summary.Cards, summary.Tagged, summary.Untranslated = collection.Stats()
	summary.Decks, summary.Notes, summary.Media = pkg.Stats()
	summary.Downloaded, summary.Skipped = fetcher.Stats()

	p.printSummary(summary)
	return summary, nil
}

func (p *Processor) newTranslator(ctx context.Context) (translation.Translator, error) {
	translator := p.translator
	if translator == nil {
		var err error
		translator, err = translation.NewTranslator(ctx, &translation.Config{
			Provider:       p.flags.TranslationProvider,
			APIKey:         cli.GetAPIKey(p.flags.TranslationProvider),
			Model:          p.flags.TranslationModel,
			SourceLanguage: p.config.Language,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to set up translation: %w", err)
		}
	}
	return translation.NewBreakerTranslator(translator, breakerMaxFailures, breakerCooldown), nil
}

// TranslationCachePath is where translations of earlier runs are kept
func TranslationCachePath(config *course.Config) string {
	return filepath.Join(config.DataDir, fmt.Sprintf("translations_%s.json", config.Language))
}

func (p *Processor) fillTranslations(ctx context.Context, translator translation.Translator, collection *cards.Collection) (*cards.Collection, int, error) {
	_, _, untranslated := collection.Stats()
	if untranslated == 0 {
		return collection, 0, nil
	}

	cachePath := TranslationCachePath(p.config)
	cache, err := translation.LoadTranslationCache(cachePath)
	if err != nil {
		fmt.Fprintf(p.out, "Warning: %v, starting with an empty cache\n", err)
		cache = translation.NewTranslationCache()
	}

	fmt.Fprintf(p.out, "\nFilling %d missing translations...\n", untranslated)
	filled, count, err := translation.NewFiller(translator, cache, p.out).Fill(ctx, collection)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fill translations: %w", err)
	}

	if err := cache.Save(cachePath); err != nil {
		fmt.Fprintf(p.out, "Warning: %v\n", err)
	}
	return filled, count, nil
}

func (p *Processor) printSummary(s *Summary) {
	fmt.Fprintf(p.out, "\n=== Conversion Summary ===\n")
	fmt.Fprintf(p.out, "Cards: %d (%d tagged)\n", s.Cards, s.Tagged)
	if s.Filled > 0 {
		fmt.Fprintf(p.out, "Translations filled: %d\n", s.Filled)
	}
	if s.Untranslated > 0 {
		fmt.Fprintf(p.out, "Without translation: %d\n", s.Untranslated)
	}
	fmt.Fprintf(p.out, "Decks: %d\n", s.Decks)
	fmt.Fprintf(p.out, "Sounds downloaded: %d\n", s.Downloaded)
	fmt.Fprintf(p.out, "Sounds already cached: %d\n", s.Skipped)
	fmt.Fprintf(p.out, "==========================\n")
	if s.CSVPath != "" {
		fmt.Fprintf(p.out, "Saved CSV to %s\n", s.CSVPath)
	}
	fmt.Fprintf(p.out, "Saved package to %s\n", s.PackagePath)
}
