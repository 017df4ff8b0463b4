// Package flow implements the wizard's step navigation as a pure state
// machine. A position is a (flow, stage) pair rather than a bare step
// number; numeric steps are derived from the active flow's stage
// sequence and exist only for the save/resume wire format.
package flow

import "homefinder/pkg/models"

// Flow is the branch of the wizard a session is on
type Flow string

const (
	FlowAgentBuy  Flow = "agent_buy"
	FlowAgentSell Flow = "agent_sell"
	FlowLender    Flow = "lender"
)

// Stage is one screen of the wizard
type Stage string

const (
	StageTransactionType Stage = "transaction_type"
	StagePropertyType    Stage = "property_type"
	StageLocationPrice   Stage = "location_price"
	StageTimeline        Stage = "timeline"
	StageStrategy        Stage = "strategy"
	StagePropertyAddress Stage = "property_address"
	StageLoanPurpose     Stage = "loan_purpose"
	StageDownPayment     Stage = "down_payment"
	StageCreditScore     Stage = "credit_score"
	StageContactInfo     Stage = "contact_info"
)

// sequences defines the ordered stages of each flow. The agent-sell
// sequence encodes the sell-path overrides (the skipped buy stages
// simply do not appear); every flow ends at contact info.
var sequences = map[Flow][]Stage{
	FlowAgentBuy: {
		StageTransactionType,
		StagePropertyType,
		StageLocationPrice,
		StageTimeline,
		StageStrategy,
		StageContactInfo,
	},
	FlowAgentSell: {
		StageTransactionType,
		StageLocationPrice,
		StagePropertyAddress,
		StageContactInfo,
	},
	FlowLender: {
		StageLoanPurpose,
		StageLocationPrice,
		StageDownPayment,
		StageCreditScore,
		StageContactInfo,
	},
}

// stageFields maps each stage to the form fields it collects, keyed by
// JSON field path. Used to gate step advancement on field completeness.
var stageFields = map[Stage][]string{
	StageTransactionType: {"transaction_type"},
	StagePropertyType:    {"property_type"},
	StageLocationPrice:   {"location", "price_min", "price_max"},
	StageTimeline:        {"timeline"},
	StageStrategy:        {"strategy", "owner_occupied"},
	StagePropertyAddress: {"property_address"},
	StageLoanPurpose:     {"loan_purpose"},
	StageDownPayment:     {"down_payment_pct"},
	StageCreditScore:     {"credit_score"},
	StageContactInfo: {
		"contact.first_name",
		"contact.last_name",
		"contact.email",
		"contact.phone",
		"terms_accepted",
	},
}

// flowStageFields overrides stageFields where a stage collects
// different answers depending on the flow: sellers quote a single
// target price and lenders a purchase price, not the buy min/max pair.
var flowStageFields = map[Flow]map[Stage][]string{
	FlowAgentSell: {
		StageLocationPrice: {"location", "target_price"},
	},
	FlowLender: {
		StageLocationPrice: {"location", "purchase_price"},
	},
}

// Position is a point in the wizard: which flow, and which stage of it
type Position struct {
	Flow  Flow  `json:"flow"`
	Stage Stage `json:"stage"`
}

// Start returns the first position of a flow
func Start(f Flow) Position {
	return Position{Flow: f, Stage: sequences[f][0]}
}

// ForAgent maps a transaction type to the agent flow it selects.
// Undecided buyers walk the buy sequence.
func ForAgent(t models.TransactionType) Flow {
	if t == models.TransactionSell {
		return FlowAgentSell
	}
	return FlowAgentBuy
}

// ForFinder returns the default flow for a finder type
func ForFinder(ft models.FinderType) Flow {
	if ft == models.FinderTypeLender {
		return FlowLender
	}
	return FlowAgentBuy
}

func (p Position) index() int {
	for i, s := range sequences[p.Flow] {
		if s == p.Stage {
			return i
		}
	}
	return 0
}

// Next returns the following position, clamped at the terminal stage.
// Advancing from the terminal stage is the caller's cue to submit.
func (p Position) Next() Position {
	seq := sequences[p.Flow]
	i := p.index()
	if i < len(seq)-1 {
		i++
	}
	return Position{Flow: p.Flow, Stage: seq[i]}
}

// Prev returns the preceding position, clamped at the first stage
func (p Position) Prev() Position {
	i := p.index()
	if i > 0 {
		i--
	}
	return Position{Flow: p.Flow, Stage: sequences[p.Flow][i]}
}

// Terminal reports whether the position is the flow's final stage
func (p Position) Terminal() bool {
	seq := sequences[p.Flow]
	return p.Stage == seq[len(seq)-1]
}

// Step returns the 1-based step number of the position within its flow
func (p Position) Step() int {
	return p.index() + 1
}

// Fields returns the JSON field paths the position's stage collects,
// honoring per-flow overrides
func (p Position) Fields() []string {
	if over, ok := flowStageFields[p.Flow][p.Stage]; ok {
		return over
	}
	return stageFields[p.Stage]
}

// MaxSteps returns the number of stages in the flow
func (f Flow) MaxSteps() int {
	return len(sequences[f])
}

// At returns the position at the given 1-based step, clamped to
// [1, MaxSteps]. There is no step 0 or negative step.
func At(f Flow, step int) Position {
	seq := sequences[f]
	if step < 1 {
		step = 1
	}
	if step > len(seq) {
		step = len(seq)
	}
	return Position{Flow: f, Stage: seq[step-1]}
}

// SkipDefaults returns values for the fields a flow never asks for but
// the flow-agnostic submission schema still requires. Applied
// atomically when a session branches onto the flow, so downstream
// validation passes without flow-specific required-field sets.
func SkipDefaults(f Flow) map[string]any {
	if f != FlowAgentSell {
		return nil
	}
	return map[string]any{
		"owner_occupied": false,
		"property_type":  "single_family",
		"strategy":       []string{"not_sure"},
		"timeline":       "asap",
	}
}
