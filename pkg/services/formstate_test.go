package services

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homefinder/pkg/flow"
	"homefinder/pkg/models"
)

type fakeSubmissionService struct {
	called     bool
	finderType models.FinderType
	payload    json.RawMessage
}

func (f *fakeSubmissionService) Submit(finderType models.FinderType, formData json.RawMessage) (*models.Submission, map[string]string, error) {
	f.called = true
	f.finderType = finderType
	f.payload = formData
	return &models.Submission{ID: 1, PublicID: "abc123def456"}, nil, nil
}

func newFormState() (*FormStateService, *fakeSubmissionService) {
	fake := &fakeSubmissionService{}
	return NewFormStateService(fake), fake
}

func TestStartSessionDefaults(t *testing.T) {
	svc, _ := newFormState()

	sess, err := svc.StartSession("s1", models.FinderTypeAgent)
	require.NoError(t, err)

	assert.Equal(t, flow.FlowAgentBuy, sess.Position.Flow)
	assert.Equal(t, flow.StageTransactionType, sess.Position.Stage)
	assert.True(t, sess.IsValid)
	assert.Empty(t, sess.Data)
}

func TestStartSessionUnknownFinder(t *testing.T) {
	svc, _ := newFormState()

	_, err := svc.StartSession("s1", models.FinderType("broker"))
	assert.ErrorIs(t, err, ErrUnknownFinderType)
}

func TestUpdateMergesContactFieldByField(t *testing.T) {
	svc, _ := newFormState()
	svc.StartSession("s1", models.FinderTypeAgent)

	_, err := svc.UpdateFormData("s1", map[string]any{
		"contact": map[string]any{"first_name": "Jane"},
	})
	require.NoError(t, err)

	sess, err := svc.UpdateFormData("s1", map[string]any{
		"contact": map[string]any{"email": "jane@example.com"},
	})
	require.NoError(t, err)

	contact := sess.Data["contact"].(map[string]any)
	assert.Equal(t, "Jane", contact["first_name"])
	assert.Equal(t, "jane@example.com", contact["email"])
}

func TestUpdateRevalidates(t *testing.T) {
	svc, _ := newFormState()
	svc.StartSession("s1", models.FinderTypeAgent)

	sess, err := svc.UpdateFormData("s1", map[string]any{"location": "Denver, ZZ"})
	require.NoError(t, err)

	assert.False(t, sess.IsValid)
	assert.Equal(t, "Enter a location as City, State", sess.Errors["location"])
}

func TestSellSelectionSeedsSkippedFields(t *testing.T) {
	svc, _ := newFormState()
	svc.StartSession("s1", models.FinderTypeAgent)

	sess, err := svc.UpdateFormData("s1", map[string]any{"transaction_type": "sell"})
	require.NoError(t, err)

	// jumps straight to location/price on the sell flow
	assert.Equal(t, flow.FlowAgentSell, sess.Position.Flow)
	assert.Equal(t, flow.StageLocationPrice, sess.Position.Stage)

	// fields the sell path never asks for are pre-seeded
	assert.Equal(t, false, sess.Data["owner_occupied"])
	assert.Equal(t, "single_family", sess.Data["property_type"])
	assert.Equal(t, []string{"not_sure"}, sess.Data["strategy"])
}

func TestTransactionTypeSwitchResetsAnswers(t *testing.T) {
	svc, _ := newFormState()
	svc.StartSession("s1", models.FinderTypeAgent)

	svc.UpdateFormData("s1", map[string]any{"transaction_type": "buy"})
	svc.UpdateFormData("s1", map[string]any{"location": "Denver, CO"})

	sess, err := svc.UpdateFormData("s1", map[string]any{"transaction_type": "sell"})
	require.NoError(t, err)

	assert.Equal(t, "sell", sess.Data["transaction_type"])
	assert.NotContains(t, sess.Data, "location")
}

func TestAdvanceBlockedOnIncompleteStage(t *testing.T) {
	svc, _ := newFormState()
	svc.StartSession("s1", models.FinderTypeAgent)

	sess, err := svc.Advance("s1")
	assert.ErrorIs(t, err, ErrStageIncomplete)
	assert.Equal(t, flow.StageTransactionType, sess.Position.Stage)
}

func TestAdvanceIgnoresLaterStageErrors(t *testing.T) {
	svc, _ := newFormState()
	svc.StartSession("s1", models.FinderTypeAgent)
	svc.UpdateFormData("s1", map[string]any{"transaction_type": "buy"})

	// contact info is still missing, but it belongs to a later stage
	sess, err := svc.Advance("s1")
	require.NoError(t, err)
	assert.Equal(t, flow.StagePropertyType, sess.Position.Stage)
}

func TestLenderAdvanceRequiresPurchasePrice(t *testing.T) {
	svc, _ := newFormState()
	svc.StartSession("s1", models.FinderTypeLender)

	svc.UpdateFormData("s1", map[string]any{"loan_purpose": "purchase"})
	_, err := svc.Advance("s1")
	require.NoError(t, err)

	// a valid location alone is not enough to leave this stage
	svc.UpdateFormData("s1", map[string]any{"location": "Austin, TX"})
	sess, err := svc.Advance("s1")
	assert.ErrorIs(t, err, ErrStageIncomplete)
	assert.Equal(t, flow.StageLocationPrice, sess.Position.Stage)

	svc.UpdateFormData("s1", map[string]any{"purchase_price": "425000"})
	sess, err = svc.Advance("s1")
	require.NoError(t, err)
	assert.Equal(t, flow.StageDownPayment, sess.Position.Stage)
}

func TestSellAdvanceRequiresTargetPrice(t *testing.T) {
	svc, _ := newFormState()
	svc.StartSession("s1", models.FinderTypeAgent)
	svc.UpdateFormData("s1", map[string]any{"transaction_type": "sell"})

	svc.UpdateFormData("s1", map[string]any{"location": "Denver, CO"})
	sess, err := svc.Advance("s1")
	assert.ErrorIs(t, err, ErrStageIncomplete)
	assert.Equal(t, flow.StageLocationPrice, sess.Position.Stage)

	svc.UpdateFormData("s1", map[string]any{"target_price": "350000"})
	sess, err = svc.Advance("s1")
	require.NoError(t, err)
	assert.Equal(t, flow.StagePropertyAddress, sess.Position.Stage)
}

func TestTransactionTypeEchoKeepsPosition(t *testing.T) {
	svc, _ := newFormState()
	svc.StartSession("s1", models.FinderTypeAgent)
	svc.UpdateFormData("s1", map[string]any{"transaction_type": "sell"})
	svc.UpdateFormData("s1", map[string]any{"location": "Denver, CO", "target_price": "350000"})

	_, err := svc.Advance("s1")
	require.NoError(t, err)

	// repeating the already-chosen type must not move the user back
	sess, err := svc.UpdateFormData("s1", map[string]any{"transaction_type": "sell"})
	require.NoError(t, err)
	assert.Equal(t, flow.StagePropertyAddress, sess.Position.Stage)
	assert.Equal(t, "Denver, CO", sess.Data["location"])
}

func TestBuyFlowWalkthrough(t *testing.T) {
	svc, fake := newFormState()
	svc.StartSession("s1", models.FinderTypeAgent)

	steps := []map[string]any{
		{"transaction_type": "buy"},
		{"property_type": "condo"},
		{"location": "Denver, CO", "price_min": "100000", "price_max": "250000"},
		{"timeline": "asap"},
		{"strategy": []any{"investment"}, "owner_occupied": false},
	}
	for _, partial := range steps {
		_, err := svc.UpdateFormData("s1", partial)
		require.NoError(t, err)
		_, err = svc.Advance("s1")
		require.NoError(t, err)
	}

	sess, _ := svc.GetSession("s1")
	require.True(t, sess.Position.Terminal())

	// next from the terminal stage means submit, not navigate
	_, err := svc.Advance("s1")
	assert.ErrorIs(t, err, ErrFinalStage)

	_, err = svc.UpdateFormData("s1", map[string]any{
		"contact": map[string]any{
			"first_name": "Jane",
			"last_name":  "Miller",
			"email":      "jane@example.com",
			"phone":      "3035550142",
		},
		"terms_accepted": true,
	})
	require.NoError(t, err)

	sub, fieldErrs, err := svc.SubmitForm("s1")
	require.NoError(t, err)
	assert.Nil(t, fieldErrs)
	assert.Equal(t, int64(1), sub.ID)
	assert.True(t, fake.called)
	assert.Equal(t, models.FinderTypeAgent, fake.finderType)
}

func TestSubmitFormInvalidMakesNoCall(t *testing.T) {
	svc, fake := newFormState()
	svc.StartSession("s1", models.FinderTypeAgent)
	svc.UpdateFormData("s1", map[string]any{"transaction_type": "buy"})

	sub, fieldErrs, err := svc.SubmitForm("s1")
	require.NoError(t, err)
	assert.Nil(t, sub)
	assert.NotEmpty(t, fieldErrs)
	assert.False(t, fake.called)

	sess, _ := svc.GetSession("s1")
	assert.False(t, sess.IsValid)
}

func TestResetForm(t *testing.T) {
	svc, _ := newFormState()
	svc.StartSession("s1", models.FinderTypeAgent)
	svc.UpdateFormData("s1", map[string]any{"transaction_type": "sell"})

	sess, err := svc.ResetForm("s1")
	require.NoError(t, err)

	assert.Empty(t, sess.Data)
	assert.Empty(t, sess.Errors)
	assert.True(t, sess.IsValid)
	assert.Equal(t, flow.Start(flow.FlowAgentBuy), sess.Position)
}

func TestRetreatClamped(t *testing.T) {
	svc, _ := newFormState()
	svc.StartSession("s1", models.FinderTypeLender)

	sess, err := svc.Retreat("s1")
	require.NoError(t, err)
	assert.Equal(t, flow.StageLoanPurpose, sess.Position.Stage)
}

func TestSessionNotFound(t *testing.T) {
	svc, _ := newFormState()

	_, err := svc.UpdateFormData("missing", map[string]any{})
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMergeFormDataShallow(t *testing.T) {
	current := map[string]any{"location": "Denver, CO", "price_min": "100000"}
	merged := MergeFormData(current, map[string]any{"price_min": "150000"})

	assert.Equal(t, "150000", merged["price_min"])
	assert.Equal(t, "Denver, CO", merged["location"])
	// input map is untouched
	assert.Equal(t, "100000", current["price_min"])
}
