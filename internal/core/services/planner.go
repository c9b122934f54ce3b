package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/ewilliams-labs/moodshift/internal/core/domain"
	"github.com/ewilliams-labs/moodshift/internal/core/ports"
	"github.com/ewilliams-labs/moodshift/internal/logging"
)

const (
	defaultCallTimeout = 10 * time.Second
	defaultConcurrency = domain.TransitionSteps
)

// Planner turns a mood transition request into an ordered track list by
// querying the recommendation service once per interpolation step.
type Planner struct {
	spotify     ports.SpotifyFactory
	logger      *log.Logger
	concurrency int
	callTimeout time.Duration
}

// PlannerOption configures a Planner.
type PlannerOption func(*Planner)

// WithConcurrency bounds how many steps are fetched at once. 1 fetches the
// steps strictly in order.
func WithConcurrency(n int) PlannerOption {
	return func(p *Planner) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// WithCallTimeout bounds every recommendation call.
func WithCallTimeout(d time.Duration) PlannerOption {
	return func(p *Planner) {
		if d > 0 {
			p.callTimeout = d
		}
	}
}

// NewPlanner constructs a Planner.
func NewPlanner(spotify ports.SpotifyFactory, logger *log.Logger, opts ...PlannerOption) *Planner {
	if logger == nil {
		logger = log.Default()
	}
	p := &Planner{
		spotify:     spotify,
		logger:      logging.WithComponent(logger, "planner"),
		concurrency: defaultConcurrency,
		callTimeout: defaultCallTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Preview resolves both moods and returns the interpolation steps without
// calling the recommendation service.
func (p *Planner) Preview(currentMood, desiredMood string) ([]domain.TransitionStep, error) {
	from, to, err := p.resolveMoods(currentMood, desiredMood)
	if err != nil {
		return nil, err
	}
	return domain.BuildTransition(from, to, domain.TransitionSteps), nil
}

// PlanTransition returns at most domain.TotalTracks tracks, earlier steps first.
// Any failed step fails the whole plan.
func (p *Planner) PlanTransition(ctx context.Context, req domain.TransitionRequest) ([]domain.Track, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	from, to, err := p.resolveMoods(req.CurrentMood, req.DesiredMood)
	if err != nil {
		return nil, err
	}

	client := p.spotify.ForToken(req.AccessToken)
	steps := domain.BuildTransition(from, to, domain.TransitionSteps)
	artistSeeds := req.ArtistSeeds()

	// Results are slotted by step index so completion order does not matter.
	perStep := make([][]domain.Track, len(steps))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for _, step := range steps {
		step := step
		g.Go(func() error {
			tracks, err := p.fetchStep(gctx, client, step, artistSeeds)
			if err != nil {
				return err
			}
			perStep[step.Index] = tracks
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("service: transition %s to %s: %w", from, to, err)
	}

	out := make([]domain.Track, 0, domain.TotalTracks)
	for _, tracks := range perStep {
		out = append(out, tracks...)
	}
	if len(out) > domain.TotalTracks {
		out = out[:domain.TotalTracks]
	}

	p.logger.Debug("transition planned", "from", from, "to", to, "tracks", len(out))
	return out, nil
}

func (p *Planner) fetchStep(ctx context.Context, client ports.RecommendationProvider, step domain.TransitionStep, artistSeeds []string) ([]domain.Track, error) {
	callCtx, cancel := context.WithTimeout(ctx, p.callTimeout)
	defer cancel()

	tracks, err := client.Recommendations(callCtx, domain.RecommendationQuery{
		Target:      step.Profile,
		GenreSeeds:  step.Genres,
		ArtistSeeds: artistSeeds,
		Limit:       domain.RecommendationSize,
	})
	if err != nil {
		var upErr *domain.UpstreamError
		if errors.As(err, &upErr) {
			return nil, err
		}
		return nil, &domain.UpstreamError{Op: fmt.Sprintf("recommendations step %d", step.Index), Err: err}
	}

	if len(tracks) > domain.TracksPerStep {
		tracks = tracks[:domain.TracksPerStep]
	}
	return tracks, nil
}

func (p *Planner) resolveMoods(currentMood, desiredMood string) (domain.Mood, domain.Mood, error) {
	from, okFrom := domain.ParseMood(currentMood)
	to, okTo := domain.ParseMood(desiredMood)

	// Unknown names resolve to an empty genre set; report them as a data
	// quality issue before rejecting the request.
	if _, ok := domain.GenresFor(currentMood); !ok {
		p.logger.Warn("unknown mood, genre set is empty", "mood", currentMood)
	}
	if _, ok := domain.GenresFor(desiredMood); !ok {
		p.logger.Warn("unknown mood, genre set is empty", "mood", desiredMood)
	}

	if !okFrom {
		return "", "", fmt.Errorf("service: %w", &domain.ValidationError{Field: "currentMood", Reason: fmt.Sprintf("unknown mood %q", currentMood)})
	}
	if !okTo {
		return "", "", fmt.Errorf("service: %w", &domain.ValidationError{Field: "desiredMood", Reason: fmt.Sprintf("unknown mood %q", desiredMood)})
	}
	return from, to, nil
}
