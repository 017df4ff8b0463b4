// Package store persists submissions and in-progress wizard sessions.
package store

import (
	"errors"

	"homefinder/pkg/models"
)

var (
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrProgressNotFound   = errors.New("progress not found")
)

// SubmissionStore defines the interface for persisting lead submissions
type SubmissionStore interface {
	CreateSubmission(sub *models.Submission) error
	GetSubmission(publicID string) (*models.Submission, error)
	UpdateWebhookResult(id int64, status models.WebhookStatus, response string) error
	CountByContactHash(hash string) int
}

// ProgressStore defines the interface for partial-submission save/resume
type ProgressStore interface {
	UpsertProgress(p *models.Progress) (created bool, err error)
	GetProgressBySession(sessionID string) (*models.Progress, error)
	GetProgress(publicID string) (*models.Progress, error)
	MarkCompleted(publicID string) error
}
