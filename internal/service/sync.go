package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"ridecoach/internal/store"
)

// SyncService orchestrates syncing rides from Strava
type SyncService struct {
	client   StravaClient
	store    *store.DB
	analyzer *AnalysisService
}

// NewSyncService creates a new sync service
func NewSyncService(client StravaClient, store *store.DB, analyzer *AnalysisService) *SyncService {
	return &SyncService{
		client:   client,
		store:    store,
		analyzer: analyzer,
	}
}

// Sync phases reported through SyncProgress
const (
	PhaseActivities = "activities"
	PhaseAnalysis   = "analysis"
)

// SyncProgress reports progress during sync
type SyncProgress struct {
	Phase           string
	Total           int
	Completed       int
	CurrentActivity string
}

// SyncResult contains the results of a sync operation
type SyncResult struct {
	ActivitiesFetched int
	RidesStored       int
	Analyzed          int
	Errors            []error
}

// SyncAll fetches new rides, then analyzes a batch of rides that have no
// analysis yet. progress, if non-nil, is closed when SyncAll returns.
func (s *SyncService) SyncAll(ctx context.Context, progress chan<- SyncProgress) (*SyncResult, error) {
	if progress != nil {
		defer close(progress)
	}

	result := &SyncResult{}

	if err := s.syncActivities(ctx, progress, result); err != nil {
		return result, fmt.Errorf("syncing activities: %w", err)
	}

	if err := s.analyzePending(ctx, progress, result); err != nil {
		return result, fmt.Errorf("analyzing rides: %w", err)
	}

	if err := s.store.SetSyncState(store.SyncKeyLastRun, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return result, fmt.Errorf("saving sync time: %w", err)
	}

	log.Info().
		Int("fetched", result.ActivitiesFetched).
		Int("rides_stored", result.RidesStored).
		Int("analyzed", result.Analyzed).
		Int("errors", len(result.Errors)).
		Msg("sync complete")

	return result, nil
}

// syncActivities pages through activities newer than the sync cursor and stores the rides
func (s *SyncService) syncActivities(ctx context.Context, progress chan<- SyncProgress, result *SyncResult) error {
	after, err := s.store.LastActivityTime()
	if err != nil {
		return err
	}

	report(progress, SyncProgress{Phase: PhaseActivities})

	newest := after
	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		activities, err := s.client.GetActivities(ctx, after, page, ActivitiesPerPage)
		if err != nil {
			return fmt.Errorf("fetching page %d: %w", page, err)
		}
		result.ActivitiesFetched += len(activities)

		for i := range activities {
			a := &activities[i]
			if !a.IsRide() {
				continue
			}
			if err := s.store.UpsertActivity(convertActivity(a)); err != nil {
				result.Errors = append(result.Errors, fmt.Errorf("storing activity %d: %w", a.ID, err))
				continue
			}
			result.RidesStored++
			if a.StartDate.After(newest) {
				newest = a.StartDate
			}
		}

		report(progress, SyncProgress{
			Phase:     PhaseActivities,
			Total:     result.ActivitiesFetched,
			Completed: result.RidesStored,
		})

		if len(activities) < ActivitiesPerPage {
			break // Last page
		}
	}

	return s.store.SetLastActivityTime(newest)
}

// analyzePending analyzes up to AnalyzeBatchSize rides lacking an analysis
func (s *SyncService) analyzePending(ctx context.Context, progress chan<- SyncProgress, result *SyncResult) error {
	pending, err := s.store.ListUnanalyzed(AnalyzeBatchSize)
	if err != nil {
		return fmt.Errorf("listing unanalyzed rides: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	for i, a := range pending {
		if err := ctx.Err(); err != nil {
			return err
		}

		report(progress, SyncProgress{
			Phase:           PhaseAnalysis,
			Total:           len(pending),
			Completed:       i,
			CurrentActivity: a.Name,
		})

		if _, err := s.analyzer.AnalyzeActivity(ctx, a.ID); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Error().Err(err).Int64("activity_id", a.ID).Msg("analysis failed")
			result.Errors = append(result.Errors, fmt.Errorf("activity %d (%s): %w", a.ID, a.Name, err))
			continue
		}
		result.Analyzed++
	}

	report(progress, SyncProgress{
		Phase:     PhaseAnalysis,
		Total:     len(pending),
		Completed: len(pending),
	})

	return nil
}

// RateLimitStatus returns the current rate limit status from the client
func (s *SyncService) RateLimitStatus() (shortRemaining, dailyRemaining int) {
	return s.client.RateLimitStatus()
}

func report(progress chan<- SyncProgress, p SyncProgress) {
	if progress != nil {
		progress <- p
	}
}
