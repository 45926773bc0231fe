package poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/amishk599/vacancywatch/internal/model"
)

// ErrCycleInProgress is returned by TryPoll when another cycle is running.
var ErrCycleInProgress = errors.New("cycle already in progress")

// CycleResult summarizes one poll cycle.
type CycleResult struct {
	Found     int      `json:"found"`     // identifiers extracted, repeats included
	Skipped   int      `json:"skipped"`   // containers without a usable link
	New       []string `json:"new"`       // delta in first-seen order
	Notified  bool     `json:"notified"`  // notifier accepted the delta
	Persisted bool     `json:"persisted"` // known set advanced and saved
}

// CommitPolicy decides whether the known set advances when the notification
// for a delta could not be delivered.
type CommitPolicy int

const (
	// CommitAlways advances the known set regardless of delivery.
	CommitAlways CommitPolicy = iota
	// CommitDelivered keeps the delta unknown so it is reported again.
	CommitDelivered
)

// Options tune how a cycle treats the known set.
type Options struct {
	CommitPolicy   CommitPolicy
	SeedOnFirstRun bool // record the first delta without notifying
}

// VacancyPoller owns the full change-detection pipeline for one page:
// fetch → extract → diff → notify → persist.
type VacancyPoller struct {
	URL       string
	fetcher   model.PageFetcher
	extractor model.VacancyExtractor
	store     model.KnownSetStore
	notifier  model.Notifier
	opts      Options
	logger    *slog.Logger

	run   sync.Mutex   // serializes cycles
	mu    sync.RWMutex // guards known
	known model.KnownSet
}

// NewVacancyPoller creates a poller wired with all its dependencies. known is
// the set loaded from store at startup; the poller takes ownership of it.
func NewVacancyPoller(
	url string,
	fetcher model.PageFetcher,
	extractor model.VacancyExtractor,
	store model.KnownSetStore,
	notifier model.Notifier,
	known model.KnownSet,
	opts Options,
	logger *slog.Logger,
) *VacancyPoller {
	if known == nil {
		known = model.NewKnownSet()
	}
	return &VacancyPoller{
		URL:       url,
		fetcher:   fetcher,
		extractor: extractor,
		store:     store,
		notifier:  notifier,
		known:     known,
		opts:      opts,
		logger:    logger,
	}
}

// Known returns a snapshot of the in-memory known set.
func (p *VacancyPoller) Known() model.KnownSet {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.known.Clone()
}

// Poll runs one cycle synchronously, waiting for any cycle already running.
// Fetch, parse and store failures are returned; the known set is left as it
// was. Notification failures are logged, not returned.
func (p *VacancyPoller) Poll(ctx context.Context) (CycleResult, error) {
	p.run.Lock()
	defer p.run.Unlock()
	return p.poll(ctx)
}

// TryPoll is like Poll but returns ErrCycleInProgress instead of waiting.
func (p *VacancyPoller) TryPoll(ctx context.Context) (CycleResult, error) {
	if !p.run.TryLock() {
		return CycleResult{}, ErrCycleInProgress
	}
	defer p.run.Unlock()
	return p.poll(ctx)
}

func (p *VacancyPoller) poll(ctx context.Context) (CycleResult, error) {
	var res CycleResult

	content, err := p.fetcher.Fetch(ctx, p.URL)
	if err != nil {
		return res, fmt.Errorf("polling %s: %w", p.URL, err)
	}

	ext, err := p.extractor.Extract(content)
	if err != nil {
		return res, fmt.Errorf("polling %s: %w", p.URL, err)
	}
	res.Found = len(ext.IDs)
	res.Skipped = ext.Skipped
	if ext.Skipped > 0 {
		p.logger.Warn("skipped malformed vacancy entries", "url", p.URL, "skipped", ext.Skipped)
	}
	p.logger.Debug("extracted vacancies", "url", p.URL, "found", res.Found)

	p.mu.RLock()
	firstRun := p.known.Len() == 0
	res.New = p.known.Missing(ext.IDs)
	p.mu.RUnlock()

	if len(res.New) == 0 {
		p.logger.Info("no new vacancies", "url", p.URL, "found", res.Found)
		return res, nil
	}
	p.logger.Info("found new vacancies", "url", p.URL, "new", len(res.New))

	if firstRun && p.opts.SeedOnFirstRun {
		p.logger.Info("first run: recording vacancies without notifying", "count", len(res.New))
	} else {
		if err := p.notifier.Notify(ctx, res.New); err != nil {
			p.logger.Error("notification failed", "url", p.URL, "new", len(res.New), "error", err)
			if p.opts.CommitPolicy == CommitDelivered {
				p.logger.Warn("known set not advanced; vacancies will be reported again next cycle")
				return res, nil
			}
		} else {
			res.Notified = true
		}
	}

	p.mu.RLock()
	next := p.known.Clone()
	p.mu.RUnlock()
	next.Add(res.New...)

	if err := p.store.Save(ctx, next); err != nil {
		return res, fmt.Errorf("polling %s: persisting known set: %w", p.URL, err)
	}

	p.mu.Lock()
	p.known = next
	p.mu.Unlock()
	res.Persisted = true

	p.logger.Info("polled page",
		"url", p.URL,
		"found", res.Found,
		"new", len(res.New),
		"known", next.Len(),
	)
	return res, nil
}
