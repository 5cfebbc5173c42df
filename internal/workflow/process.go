package workflow

import (
	"context"
	"fmt"
	"os"
	"sync"

	"inkcast/internal/logging"
	"inkcast/internal/queue"
	"inkcast/internal/stageexec"
)

// ProcessNext runs one stage on the oldest ready queue item. It reports
// whether an item was picked up. Stage failures mark the item failed and are
// returned to the caller; the loop keeps going with the next item.
func (m *Manager) ProcessNext(ctx context.Context) (bool, error) {
	item, err := m.store.NextForStatuses(ctx, m.readyOrder...)
	if err != nil {
		return false, err
	}
	if item == nil {
		return false, nil
	}

	pipeline, ok := m.stages[item.Status]
	if !ok {
		m.logger.Warn("no stage configured for status",
			logging.String("status", string(item.Status)))
		return false, nil
	}

	if err := m.runStage(ctx, pipeline, item); err != nil {
		return true, err
	}
	return true, nil
}

// ProcessChapter drives a single item through every remaining stage. Used by
// the one-shot translate command.
func (m *Manager) ProcessChapter(ctx context.Context, id int64) (*queue.Item, error) {
	for {
		item, err := m.store.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if item == nil {
			return nil, fmt.Errorf("queue item %d not found", id)
		}
		if item.Status == queue.StatusCompleted || item.Status == queue.StatusFailed {
			return item, nil
		}

		pipeline, ok := m.stages[item.Status]
		if !ok {
			return item, fmt.Errorf("no stage configured for status %s", item.Status)
		}
		if err := m.runStage(ctx, pipeline, item); err != nil {
			return item, err
		}
	}
}

func (m *Manager) runStage(ctx context.Context, pipeline pipelineStage, item *queue.Item) error {
	hbCtx, hbCancel := context.WithCancel(ctx)
	var hbWG sync.WaitGroup
	hbWG.Add(1)
	go m.heartbeat.StartLoop(hbCtx, &hbWG, item.ID)

	runErr := stageexec.Run(ctx, stageexec.Options{
		Logger:     m.logger,
		Store:      m.store,
		Handler:    pipeline.handler,
		StageName:  pipeline.name,
		Processing: pipeline.processing,
		Done:       pipeline.done,
		Item:       item,
	})
	hbCancel()
	hbWG.Wait()

	if runErr != nil {
		return runErr
	}
	if item.Status == queue.StatusCompleted {
		m.finishChapter(item)
	}
	return nil
}

// finishChapter removes the uploaded source file once the chapter has made
// it all the way through the pipeline. Failed chapters keep their upload so
// a retry can reprocess them.
func (m *Manager) finishChapter(item *queue.Item) {
	if item.SourcePath == "" {
		return
	}
	if err := os.Remove(item.SourcePath); err != nil && !os.IsNotExist(err) {
		m.logger.Warn("failed to remove processed upload",
			logging.String("source_file", item.SourcePath),
			logging.Error(err),
		)
		return
	}
	m.logger.Info("chapter completed",
		logging.Int64(logging.FieldItemID, item.ID),
		logging.String("output", item.OutputPath),
	)
}
