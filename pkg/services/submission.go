package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"homefinder/pkg/clients/crm"
	"homefinder/pkg/models"
	"homefinder/pkg/store"
	"homefinder/pkg/utils"
	"homefinder/pkg/validation"
)

var (
	ErrUnknownFinderType = errors.New("unknown finder type")
	ErrMalformedPayload  = errors.New("malformed form payload")
)

// SubmissionService defines the interface for the final submit pipeline
type SubmissionService interface {
	// Submit re-validates the payload, persists it, and kicks off the
	// CRM dispatch. A non-nil fieldErrs return means the payload
	// failed validation and nothing was persisted.
	Submit(finderType models.FinderType, formData json.RawMessage) (sub *models.Submission, fieldErrs map[string]string, err error)
}

type submissionServiceImpl struct {
	store     store.SubmissionStore
	crmClient crm.Client

	// signalled after each webhook result is recorded; nil outside tests
	webhookDone chan int64
}

// NewSubmissionService creates a new submission service
func NewSubmissionService(submissionStore store.SubmissionStore, crmClient crm.Client) SubmissionService {
	return &submissionServiceImpl{
		store:     submissionStore,
		crmClient: crmClient,
	}
}

// Submit handles the server side of a finished wizard session. The
// schema check here is independent of anything the client claims to
// have validated.
func (s *submissionServiceImpl) Submit(finderType models.FinderType, formData json.RawMessage) (*models.Submission, map[string]string, error) {
	contact, fieldErrs, err := validatePayload(finderType, formData)
	if err != nil {
		return nil, nil, err
	}
	if len(fieldErrs) > 0 {
		return nil, fieldErrs, nil
	}

	hash := utils.ContactHash(contact.Email, contact.Phone)
	if prior := s.store.CountByContactHash(hash); prior > 0 {
		log.Printf("Contact %s has %d prior submissions", hash[:12], prior)
	}

	sub := &models.Submission{
		FinderType:    finderType,
		Payload:       formData,
		Name:          contact.FirstName + " " + contact.LastName,
		Email:         contact.Email,
		Phone:         contact.Phone,
		ContactHash:   hash,
		WebhookStatus: models.WebhookStatusPending,
	}

	if err := s.store.CreateSubmission(sub); err != nil {
		return nil, nil, fmt.Errorf("error persisting submission: %w", err)
	}

	log.Printf("Persisted %s submission %d (%s)", finderType, sub.ID, sub.PublicID)

	// Fire and forget: the webhook outcome is recorded for audit but
	// never influences the response to the caller.
	go s.dispatchWebhook(*sub)

	return sub, nil, nil
}

func (s *submissionServiceImpl) dispatchWebhook(sub models.Submission) {
	lead := crm.Lead{
		LeadRef:     sub.PublicID,
		FinderType:  string(sub.FinderType),
		Name:        sub.Name,
		Email:       sub.Email,
		Phone:       sub.Phone,
		SubmittedAt: sub.SubmittedAt,
		Payload:     sub.Payload,
	}

	body, err := s.crmClient.SendLead(lead)
	if err != nil {
		log.Printf("CRM webhook failed for submission %d: %v", sub.ID, err)
		if err := s.store.UpdateWebhookResult(sub.ID, models.WebhookStatusFailed, err.Error()); err != nil {
			log.Printf("Error recording webhook failure for submission %d: %v", sub.ID, err)
		}
	} else {
		if err := s.store.UpdateWebhookResult(sub.ID, models.WebhookStatusSuccess, body); err != nil {
			log.Printf("Error recording webhook success for submission %d: %v", sub.ID, err)
		}
	}

	if s.webhookDone != nil {
		s.webhookDone <- sub.ID
	}
}

// validatePayload decodes and validates a form payload for the given
// finder type, returning the contact details on success
func validatePayload(finderType models.FinderType, formData json.RawMessage) (*models.Contact, map[string]string, error) {
	switch finderType {
	case models.FinderTypeAgent:
		var form models.AgentFormData
		if err := json.Unmarshal(formData, &form); err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
		}
		if errs := validation.ValidateAgent(&form); errs != nil {
			return nil, errs, nil
		}
		return &form.Contact, nil, nil

	case models.FinderTypeLender:
		var form models.LenderFormData
		if err := json.Unmarshal(formData, &form); err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
		}
		if errs := validation.ValidateLender(&form); errs != nil {
			return nil, errs, nil
		}
		return &form.Contact, nil, nil
	}

	return nil, nil, ErrUnknownFinderType
}
