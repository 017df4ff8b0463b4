package store

import (
	"sync"
	"time"

	"github.com/sqids/sqids-go"

	"homefinder/pkg/models"
)

// MemoryStore is an in-process implementation of both stores. Internal
// IDs come from an incrementing counter guarded by the store mutex;
// public IDs are sqids-encoded so the counter never leaks to callers.
// Single-process only; a multi-process deployment needs a database
// behind these interfaces instead.
type MemoryStore struct {
	mu          sync.RWMutex
	ids         *sqids.Sqids
	nextSubID   int64
	nextProgID  int64
	submissions map[int64]*models.Submission
	byPublicID  map[string]int64
	progress    map[string]*models.Progress // keyed by session ID
	progByID    map[string]string           // public ID -> session ID
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	s, _ := sqids.New(sqids.Options{
		Alphabet:  "0123456789abcdefghijklmnopqrstuvwxyz",
		MinLength: 12,
	})

	return &MemoryStore{
		ids:         s,
		nextSubID:   1,
		nextProgID:  1,
		submissions: make(map[int64]*models.Submission),
		byPublicID:  make(map[string]int64),
		progress:    make(map[string]*models.Progress),
		progByID:    make(map[string]string),
	}
}

// CreateSubmission assigns IDs and the submission timestamp, then
// stores the record
func (s *MemoryStore) CreateSubmission(sub *models.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub.ID = s.nextSubID
	s.nextSubID++
	sub.PublicID, _ = s.ids.Encode([]uint64{1, uint64(sub.ID)})
	sub.SubmittedAt = time.Now().UTC()

	stored := *sub
	s.submissions[sub.ID] = &stored
	s.byPublicID[sub.PublicID] = sub.ID
	return nil
}

func (s *MemoryStore) GetSubmission(publicID string) (*models.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byPublicID[publicID]
	if !ok {
		return nil, ErrSubmissionNotFound
	}
	sub := *s.submissions[id]
	return &sub, nil
}

// UpdateWebhookResult records the outcome of the CRM dispatch. The
// rest of the submission is never touched.
func (s *MemoryStore) UpdateWebhookResult(id int64, status models.WebhookStatus, response string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.submissions[id]
	if !ok {
		return ErrSubmissionNotFound
	}
	sub.WebhookStatus = status
	sub.WebhookResponse = response
	return nil
}

func (s *MemoryStore) CountByContactHash(hash string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, sub := range s.submissions {
		if sub.ContactHash == hash {
			count++
		}
	}
	return count
}

// UpsertProgress creates or replaces the progress record for the
// session, reporting whether a new record was created
func (s *MemoryStore) UpsertProgress(p *models.Progress) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	existing, ok := s.progress[p.SessionID]
	if ok {
		p.ID = existing.ID
		p.PublicID = existing.PublicID
		p.CreatedAt = existing.CreatedAt
		p.Completed = existing.Completed
	} else {
		p.ID = s.nextProgID
		s.nextProgID++
		p.PublicID, _ = s.ids.Encode([]uint64{2, uint64(p.ID)})
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	stored := *p
	s.progress[p.SessionID] = &stored
	s.progByID[p.PublicID] = p.SessionID
	return !ok, nil
}

func (s *MemoryStore) GetProgressBySession(sessionID string) (*models.Progress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.progress[sessionID]
	if !ok {
		return nil, ErrProgressNotFound
	}
	out := *p
	return &out, nil
}

func (s *MemoryStore) GetProgress(publicID string) (*models.Progress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessionID, ok := s.progByID[publicID]
	if !ok {
		return nil, ErrProgressNotFound
	}
	out := *s.progress[sessionID]
	return &out, nil
}

func (s *MemoryStore) MarkCompleted(publicID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessionID, ok := s.progByID[publicID]
	if !ok {
		return ErrProgressNotFound
	}
	s.progress[sessionID].Completed = true
	s.progress[sessionID].UpdatedAt = time.Now().UTC()
	return nil
}
