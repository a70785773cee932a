package slangs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/UnknownOlympus/themis/internal/lib/logger/sl"
	"github.com/UnknownOlympus/themis/internal/metrics"
	"github.com/UnknownOlympus/themis/internal/models"
	"github.com/UnknownOlympus/themis/internal/repository"
)

const runType = "detect_slangs"

type Detector struct {
	log          *slog.Logger
	feedbackRepo repository.FeedbackRepoIface
	slangRepo    repository.SlangRepoIface
	metrics      *metrics.Metrics
}

func NewDetector(
	log *slog.Logger,
	feedbackRepo repository.FeedbackRepoIface,
	slangRepo repository.SlangRepoIface,
	metrics *metrics.Metrics,
) *Detector {
	return &Detector{log: log, feedbackRepo: feedbackRepo, slangRepo: slangRepo, metrics: metrics}
}

func (d *Detector) initLogger(opn string) *slog.Logger {
	return d.log.With(
		slog.String("op", opn),
		slog.String("division", "slangs"),
	)
}

// DetectSlangs scans every stored feedback record and returns those containing at least
// one slang word, in the order the store returned them.
func (d *Detector) DetectSlangs(ctx context.Context) (matches []models.FeedbackMatch, err error) {
	const opn = "Slangs.DetectSlangs"
	log := d.initLogger(opn)

	defer func() {
		d.metrics.ObserveRun(runType, err, float64(time.Now().Unix()))
	}()

	words, err := d.slangRepo.GetSlangWords(ctx)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load slang vocabulary", sl.Err(err))
		return nil, fmt.Errorf("%w: failed to load slang vocabulary: %w", models.ErrStore, err)
	}
	vocab := NewWordSet(words)

	feedback, err := d.feedbackRepo.GetAllFeedback(ctx)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load feedback", sl.Err(err))
		return nil, fmt.Errorf("%w: failed to load feedback: %w", models.ErrStore, err)
	}

	matches = make([]models.FeedbackMatch, 0)
	for _, record := range feedback {
		detected, matchErr := MatchSlangs(ctx, vocab, record.Text)
		if matchErr != nil {
			return nil, fmt.Errorf("failed to match feedback %d: %w", record.ID, matchErr)
		}
		if len(detected) == 0 {
			continue
		}

		d.metrics.SlangsDetected.Add(float64(len(detected)))
		matches = append(matches, models.FeedbackMatch{ID: record.ID, Feedback: record.Text, Slangs: detected})
	}

	log.InfoContext(ctx, "Feedback scanned", "records", len(feedback), "with_slangs", len(matches))

	return matches, nil
}

// MatchSentence returns the slang words of an arbitrary sentence, looking every word up in the store.
func (d *Detector) MatchSentence(ctx context.Context, sentence string) ([]string, error) {
	return MatchSlangs(ctx, storeVocabulary{repo: d.slangRepo}, sentence)
}

// storeVocabulary looks up each word with its own query.
type storeVocabulary struct {
	repo repository.SlangRepoIface
}

func (v storeVocabulary) Contains(ctx context.Context, word string) (bool, error) {
	found, err := v.repo.IsSlang(ctx, word)
	if err != nil {
		return false, fmt.Errorf("%w: %w", models.ErrStore, err)
	}

	return found, nil
}
