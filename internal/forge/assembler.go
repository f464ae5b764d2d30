// Package forge drives the card generation pipeline end to end: vision
// analysis, title and stat generation, art generation, and assembly of
// the final card record.
package forge

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"

	"cardforge-bot/internal/card"
	"cardforge-bot/internal/imaging"
	"cardforge-bot/internal/prompt"
)

// Generator is the upstream AI collaborator. *gemini.Client satisfies it;
// tests substitute a fake.
type Generator interface {
	AnalyzeImage(ctx context.Context, instruction string, image []byte, mimeType string) (string, error)
	GenerateText(ctx context.Context, instruction string) (string, error)
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

// Sequence allocates display numbers. The collection store satisfies it.
type Sequence interface {
	NextDisplayNumber(ctx context.Context) (int64, error)
}

type Options struct {
	Generator Generator
	Templates *prompt.Registry
	Sequence  Sequence
	Logger    *slog.Logger

	JPEGQuality int
	MaxImageDim uint
}

// Factory validates the pipeline wiring once and stamps out one
// assembler per generation attempt. Wiring problems surface here, at
// construction time, and block all attempts.
type Factory struct {
	opts Options
}

func NewFactory(opts Options) (*Factory, error) {
	switch {
	case opts.Generator == nil:
		return nil, &Error{Kind: KindConfiguration, Err: errors.New("generator is nil")}
	case opts.Templates == nil:
		return nil, &Error{Kind: KindConfiguration, Err: errors.New("template registry is nil")}
	case opts.Sequence == nil:
		return nil, &Error{Kind: KindConfiguration, Err: errors.New("display sequence is nil")}
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Factory{opts: opts}, nil
}

// New creates an independent assembler for one card-creation flow.
// onProgress may be nil.
func (f *Factory) New(onProgress func(Progress)) *Assembler {
	return &Assembler{
		gen:        f.opts.Generator,
		templates:  f.opts.Templates,
		seq:        f.opts.Sequence,
		logger:     f.opts.Logger,
		quality:    f.opts.JPEGQuality,
		maxDim:     f.opts.MaxImageDim,
		onProgress: onProgress,
	}
}

// Assembler runs one photo through the pipeline. A single assembler
// handles one attempt at a time; create separate instances to generate
// cards for different photos concurrently.
type Assembler struct {
	gen        Generator
	templates  *prompt.Registry
	seq        Sequence
	logger     *slog.Logger
	quality    int
	maxDim     uint
	onProgress func(Progress)

	busy atomic.Bool
}

// Generate turns raw photo bytes into a finished card. The sequence is
// strictly ordered because every step feeds the next. Any failure aborts
// the attempt: no partial card is ever returned, and nothing is retried
// here.
func (a *Assembler) Generate(ctx context.Context, photo []byte) (card.Card, error) {
	if !a.busy.CompareAndSwap(false, true) {
		return card.Card{}, ErrBusy
	}
	defer a.busy.Store(false)

	jpegBytes, err := imaging.PrepareJPEG(photo, imaging.Options{Quality: a.quality, MaxDim: a.maxDim})
	if err != nil {
		return a.fail(decodeError(PhaseAnalyzing, "", err))
	}

	a.emit(Progress{State: StateWorking, Phase: PhaseAnalyzing})
	analysis, err := a.analyze(ctx, jpegBytes)
	if err != nil {
		return a.fail(err)
	}
	values := analysis.PlaceholderValues()

	a.emit(Progress{State: StateWorking, Phase: PhaseNaming})
	title, err := a.generateTitle(ctx, values)
	if err != nil {
		return a.fail(err)
	}

	a.emit(Progress{State: StateWorking, Phase: PhaseRollingStats})
	stats, err := a.generateStats(ctx, values)
	if err != nil {
		return a.fail(err)
	}

	// Rendering only; the rendered string is the artifact handed to the
	// image model.
	artPrompt, err := a.templates.Render(prompt.Art, values)
	if err != nil {
		return a.fail(&Error{Kind: KindConfiguration, Phase: PhasePainting, Err: err})
	}

	a.emit(Progress{State: StateWorking, Phase: PhasePainting})
	imageRef, err := a.gen.GenerateImage(ctx, artPrompt)
	if err != nil {
		return a.fail(classify(PhasePainting, err))
	}

	number, err := a.seq.NextDisplayNumber(ctx)
	if err != nil {
		return a.fail(&Error{Kind: KindConfiguration, Phase: PhasePainting, Err: err})
	}

	c := card.New(number, title, describe(analysis), imageRef, stats)
	a.logger.Info("card assembled",
		"id", c.ID, "number", c.DisplayNumber, "title", c.Title, "category", analysis.Category)
	a.emit(Progress{State: StateSucceeded, Card: &c})
	return c, nil
}

func (a *Assembler) analyze(ctx context.Context, jpegBytes []byte) (card.Analysis, error) {
	instruction, err := a.templates.Render(prompt.Analysis, nil)
	if err != nil {
		return card.Analysis{}, &Error{Kind: KindConfiguration, Phase: PhaseAnalyzing, Err: err}
	}

	reply, err := a.gen.AnalyzeImage(ctx, instruction, jpegBytes, "image/jpeg")
	if err != nil {
		return card.Analysis{}, classify(PhaseAnalyzing, err)
	}

	analysis, err := card.ParseAnalysis(reply)
	if err != nil {
		return card.Analysis{}, decodeError(PhaseAnalyzing, reply, err)
	}
	return analysis, nil
}

// generateTitle trims whitespace but performs no shape validation: a
// rambling reply becomes a bad title, not an error.
func (a *Assembler) generateTitle(ctx context.Context, values map[string]string) (string, error) {
	instruction, err := a.templates.Render(prompt.Title, values)
	if err != nil {
		return "", &Error{Kind: KindConfiguration, Phase: PhaseNaming, Err: err}
	}

	reply, err := a.gen.GenerateText(ctx, instruction)
	if err != nil {
		return "", classify(PhaseNaming, err)
	}
	return strings.TrimSpace(reply), nil
}

func (a *Assembler) generateStats(ctx context.Context, values map[string]string) ([]card.StatEntry, error) {
	instruction, err := a.templates.Render(prompt.Stats, values)
	if err != nil {
		return nil, &Error{Kind: KindConfiguration, Phase: PhaseRollingStats, Err: err}
	}

	reply, err := a.gen.GenerateText(ctx, instruction)
	if err != nil {
		return nil, classify(PhaseRollingStats, err)
	}

	stats, err := card.ParseStats(reply)
	if err != nil {
		return nil, decodeError(PhaseRollingStats, reply, err)
	}
	return stats, nil
}

func (a *Assembler) fail(err error) (card.Card, error) {
	a.logger.Warn("generation attempt failed", "err", err)
	a.emit(Progress{State: StateFailed, Err: err})
	return card.Card{}, err
}

func (a *Assembler) emit(p Progress) {
	if a.onProgress != nil {
		a.onProgress(p)
	}
}

func describe(a card.Analysis) string {
	traits := strings.TrimRight(a.VisualTraits, ".")
	return a.Subject + ". " + traits + "."
}
