package services

import (
	"encoding/json"
	"fmt"
	"log"

	"homefinder/pkg/flow"
	"homefinder/pkg/models"
	"homefinder/pkg/store"
)

// ProgressService defines the interface for partial-submission
// save/resume, keyed by the embedding page's session ID
type ProgressService interface {
	Save(finderType models.FinderType, sessionID string, currentStep int, partialData json.RawMessage) (p *models.Progress, created bool, err error)
	Get(sessionID string) (*models.Progress, error)
	Complete(publicID string) error
}

type progressServiceImpl struct {
	store store.ProgressStore
}

// NewProgressService creates a new progress service
func NewProgressService(progressStore store.ProgressStore) ProgressService {
	return &progressServiceImpl{store: progressStore}
}

// Save upserts the session's progress. Partial data is merged into any
// previously saved data with the same semantics a live wizard session
// uses, and the step is clamped to the active flow's range.
func (s *progressServiceImpl) Save(finderType models.FinderType, sessionID string, currentStep int, partialData json.RawMessage) (*models.Progress, bool, error) {
	if !finderType.Valid() {
		return nil, false, ErrUnknownFinderType
	}

	var partial map[string]any
	if err := json.Unmarshal(partialData, &partial); err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	merged := partial
	if existing, err := s.store.GetProgressBySession(sessionID); err == nil && existing.FinderType == finderType {
		var prior map[string]any
		if err := json.Unmarshal(existing.PartialData, &prior); err == nil {
			merged = MergeFormData(prior, partial)
		}
	}

	activeFlow := flow.ForFinder(finderType)
	if finderType == models.FinderTypeAgent {
		if t, ok := merged["transaction_type"].(string); ok {
			activeFlow = flow.ForAgent(models.TransactionType(t))
		}
	}
	step := flow.At(activeFlow, currentStep).Step()

	data, err := json.Marshal(merged)
	if err != nil {
		return nil, false, fmt.Errorf("error encoding partial data: %w", err)
	}

	p := &models.Progress{
		SessionID:   sessionID,
		FinderType:  finderType,
		CurrentStep: step,
		PartialData: data,
	}
	created, err := s.store.UpsertProgress(p)
	if err != nil {
		return nil, false, fmt.Errorf("error saving progress: %w", err)
	}

	log.Printf("Saved progress for session %s at step %d (created=%v)", sessionID, step, created)
	return p, created, nil
}

func (s *progressServiceImpl) Get(sessionID string) (*models.Progress, error) {
	return s.store.GetProgressBySession(sessionID)
}

// Complete marks a partial submission as finished so followups stop
// targeting it
func (s *progressServiceImpl) Complete(publicID string) error {
	if err := s.store.MarkCompleted(publicID); err != nil {
		return err
	}
	log.Printf("Marked progress %s complete", publicID)
	return nil
}
