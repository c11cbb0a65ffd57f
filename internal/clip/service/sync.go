package service

import (
	"context"
	"time"

	"seeksy/internal/clip/model"
	"seeksy/pkg/logger"
)

const syncBatch = 50

// RunSyncWorker polls the render service for clips whose webhook has not
// arrived within grace. It returns when ctx is cancelled.
func (s *ClipService) RunSyncWorker(ctx context.Context, interval, grace time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Sugar.Infof("Render sync worker started (every %s, grace %s)", interval, grace)
	for {
		select {
		case <-ctx.Done():
			logger.Sugar.Info("Render sync worker stopped")
			return
		case <-ticker.C:
			if _, err := s.SyncPending(ctx, time.Now().Add(-grace)); err != nil {
				logger.Sugar.Errorf("Render sync failed: %v", err)
			}
		}
	}
}

// SyncPending polls one batch of unfinished clips last updated before
// cutoff and returns how many changed.
func (s *ClipService) SyncPending(ctx context.Context, cutoff time.Time) (int, error) {
	clips, err := s.Repo.ListPending(ctx, cutoff, syncBatch)
	if err != nil {
		return 0, err
	}

	changed := 0
	for _, c := range clips {
		if ctx.Err() != nil {
			return changed, ctx.Err()
		}
		st, err := s.Renderer.Status(ctx, c.RenderID)
		if err != nil {
			logger.Sugar.Warnf("Could not poll render %s for clip %s: %v", c.RenderID, c.ID, err)
			continue
		}

		if st.Status == "" || model.FromRender(st.Status) == c.Status {
			// No progress: push it to the back of the queue.
			s.Repo.Touch(ctx, c.ID)
			continue
		}
		ok, err := s.apply(ctx, c.RenderID, st)
		if err != nil {
			logger.Sugar.Errorf("Could not update clip %s: %v", c.ID, err)
			continue
		}
		if ok {
			changed++
		}
	}
	if changed > 0 {
		logger.Sugar.Infof("Render sync updated %d of %d clips", changed, len(clips))
	}
	return changed, nil
}
