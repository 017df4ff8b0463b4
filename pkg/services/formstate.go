package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"homefinder/pkg/flow"
	"homefinder/pkg/models"
	"homefinder/pkg/validation"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrStageIncomplete = errors.New("current step has invalid fields")
	ErrFinalStage      = errors.New("final step reached, submit the form instead")
)

// FormSession is one user's wizard state: where they are, what they
// have answered so far, and the current validation verdict
type FormSession struct {
	SessionID  string
	FinderType models.FinderType
	Position   flow.Position
	Data       map[string]any
	Errors     map[string]string
	IsValid    bool
	UpdatedAt  time.Time
}

// FormStateService holds live wizard sessions and is the single entry
// point for mutating them. Navigation is computed by the flow package;
// nothing else moves a session between stages.
type FormStateService struct {
	mu         sync.RWMutex
	sessions   map[string]*FormSession
	submission SubmissionService
}

// NewFormStateService creates a new form state service
func NewFormStateService(submission SubmissionService) *FormStateService {
	return &FormStateService{
		sessions:   make(map[string]*FormSession),
		submission: submission,
	}
}

// StartSession creates a session with per-flow defaults. Starting an
// existing session resets it.
func (s *FormStateService) StartSession(sessionID string, finderType models.FinderType) (*FormSession, error) {
	if !finderType.Valid() {
		return nil, ErrUnknownFinderType
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess := &FormSession{
		SessionID:  sessionID,
		FinderType: finderType,
		Position:   flow.Start(flow.ForFinder(finderType)),
		Data:       defaultFormData(),
		Errors:     map[string]string{},
		IsValid:    true,
		UpdatedAt:  time.Now().UTC(),
	}
	s.sessions[sessionID] = sess
	return snapshot(sess), nil
}

// UpdateFormData merges a partial update into the session and
// re-validates the full merged state. Selecting a transaction type
// repositions the session onto the matching flow; switching between
// types resets the collected answers first.
func (s *FormStateService) UpdateFormData(sessionID string, partial map[string]any) (*FormSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	if raw, has := partial["transaction_type"]; has && sess.FinderType == models.FinderTypeAgent {
		chosen, _ := raw.(string)
		prev, _ := sess.Data["transaction_type"].(string)
		f := flow.ForAgent(models.TransactionType(chosen))
		if prev != "" && prev != chosen {
			log.Printf("Session %s switched transaction type %s -> %s, resetting answers", sessionID, prev, chosen)
			sess.Data = defaultFormData()
			sess.Position = flow.Start(f)
		}
		sess.Data = MergeFormData(sess.Data, partial)

		// Reposition only on an actual selection change; echoing the
		// already-chosen type must not move the user.
		if prev != chosen {
			if f == flow.FlowAgentSell {
				// Seed the fields the sell path never asks for, then
				// jump straight to location/price.
				for k, v := range flow.SkipDefaults(f) {
					sess.Data[k] = v
				}
				sess.Position = flow.Position{Flow: f, Stage: flow.StageLocationPrice}
			} else {
				sess.Position = flow.Position{Flow: f, Stage: sess.Position.Stage}
			}
		}
	} else {
		sess.Data = MergeFormData(sess.Data, partial)
	}

	s.revalidate(sess)
	sess.UpdatedAt = time.Now().UTC()
	return snapshot(sess), nil
}

// Advance moves the session to the next stage. It refuses if any field
// of the current stage is missing or invalid, and refuses on the final
// stage, where Submit is the only way forward.
func (s *FormStateService) Advance(sessionID string) (*FormSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if sess.Position.Terminal() {
		return snapshot(sess), ErrFinalStage
	}

	s.revalidate(sess)
	if err := stageBlocked(sess); err != nil {
		return snapshot(sess), err
	}

	sess.Position = sess.Position.Next()
	sess.UpdatedAt = time.Now().UTC()
	return snapshot(sess), nil
}

// Retreat moves the session one stage back, clamped at the first stage
func (s *FormStateService) Retreat(sessionID string) (*FormSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess.Position = sess.Position.Prev()
	sess.UpdatedAt = time.Now().UTC()
	return snapshot(sess), nil
}

// ResetForm restores the session to its initial per-flow defaults
func (s *FormStateService) ResetForm(sessionID string) (*FormSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess.Data = defaultFormData()
	sess.Errors = map[string]string{}
	sess.IsValid = true
	sess.Position = flow.Start(flow.ForFinder(sess.FinderType))
	sess.UpdatedAt = time.Now().UTC()
	return snapshot(sess), nil
}

// SubmitForm re-validates the full form and, if valid, hands it to the
// submission pipeline. On validation failure the errors are recorded
// on the session and no network call is made.
func (s *FormStateService) SubmitForm(sessionID string) (*models.Submission, map[string]string, error) {
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		s.mu.Unlock()
		return nil, nil, ErrSessionNotFound
	}

	s.revalidate(sess)
	if !sess.IsValid {
		errs := copyErrors(sess.Errors)
		s.mu.Unlock()
		return nil, errs, nil
	}

	payload, err := json.Marshal(sess.Data)
	finderType := sess.FinderType
	s.mu.Unlock()
	if err != nil {
		return nil, nil, fmt.Errorf("error encoding form data: %w", err)
	}

	return s.submission.Submit(finderType, payload)
}

// GetSession returns a copy of the session state
func (s *FormStateService) GetSession(sessionID string) (*FormSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return snapshot(sess), nil
}

// revalidate recomputes Errors and IsValid from the full merged state
func (s *FormStateService) revalidate(sess *FormSession) {
	payload, err := json.Marshal(sess.Data)
	if err != nil {
		sess.Errors = map[string]string{"form": err.Error()}
		sess.IsValid = false
		return
	}

	var errs map[string]string
	switch sess.FinderType {
	case models.FinderTypeLender:
		var form models.LenderFormData
		if err := json.Unmarshal(payload, &form); err != nil {
			errs = map[string]string{"form": "Form data is malformed"}
		} else {
			errs = validation.ValidateLender(&form)
		}
	default:
		var form models.AgentFormData
		if err := json.Unmarshal(payload, &form); err != nil {
			errs = map[string]string{"form": "Form data is malformed"}
		} else {
			errs = validation.ValidateAgent(&form)
		}
	}

	if errs == nil {
		errs = map[string]string{}
	}
	sess.Errors = errs
	sess.IsValid = len(errs) == 0
}

// stageBlocked reports ErrStageIncomplete if any error touches a field
// the current stage collects. Errors on later stages never block.
func stageBlocked(sess *FormSession) error {
	for _, field := range sess.Position.Fields() {
		for path := range sess.Errors {
			if path == field || strings.HasPrefix(path, field+".") {
				return ErrStageIncomplete
			}
		}
	}
	return nil
}

// MergeFormData shallow-merges a partial update into form data at the
// top level; the nested contact object is merged field by field so a
// partial contact update never drops the other contact fields.
func MergeFormData(current, partial map[string]any) map[string]any {
	merged := make(map[string]any, len(current)+len(partial))
	for k, v := range current {
		merged[k] = v
	}
	for k, v := range partial {
		if k == "contact" {
			merged[k] = mergeContact(merged[k], v)
			continue
		}
		merged[k] = v
	}
	return merged
}

func mergeContact(current, partial any) any {
	curMap, okCur := current.(map[string]any)
	parMap, okPar := partial.(map[string]any)
	if !okPar {
		return partial
	}
	out := make(map[string]any, len(curMap)+len(parMap))
	if okCur {
		for k, v := range curMap {
			out[k] = v
		}
	}
	for k, v := range parMap {
		out[k] = v
	}
	return out
}

func defaultFormData() map[string]any {
	return map[string]any{}
}

func snapshot(sess *FormSession) *FormSession {
	out := *sess
	out.Data = MergeFormData(sess.Data, nil)
	out.Errors = copyErrors(sess.Errors)
	return &out
}

func copyErrors(errs map[string]string) map[string]string {
	out := make(map[string]string, len(errs))
	for k, v := range errs {
		out[k] = v
	}
	return out
}
