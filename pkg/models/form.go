package models

// FinderType identifies which wizard a lead came through
type FinderType string

const (
	FinderTypeAgent  FinderType = "agent"
	FinderTypeLender FinderType = "lender"
)

// Valid reports whether the finder type is one the service knows about
func (f FinderType) Valid() bool {
	return f == FinderTypeAgent || f == FinderTypeLender
}

// TransactionType is the agent-flow branch selector
type TransactionType string

const (
	TransactionBuy       TransactionType = "buy"
	TransactionSell      TransactionType = "sell"
	TransactionUndecided TransactionType = "undecided"
)

// Contact holds the lead's contact details, collected on the final step
type Contact struct {
	FirstName string `json:"first_name" validate:"required,min=2"`
	LastName  string `json:"last_name" validate:"required,min=2"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"required,min=10"`
}

// AgentFormData is the full answer set for agent-finder sessions.
// The schema is flow-agnostic: sell sessions carry defaults for the
// buy-only fields they skip (see flow.SkipDefaults).
type AgentFormData struct {
	TransactionType TransactionType `json:"transaction_type" validate:"required,oneof=buy sell undecided"`
	Location        string          `json:"location" validate:"required"`
	PriceMin        string          `json:"price_min" validate:"required_unless=TransactionType sell"`
	PriceMax        string          `json:"price_max" validate:"required_unless=TransactionType sell"`
	TargetPrice     string          `json:"target_price" validate:"required_if=TransactionType sell"`
	PropertyType    string          `json:"property_type" validate:"required,oneof=single_family condo townhouse multi_family land"`
	OwnerOccupied   bool            `json:"owner_occupied"`
	Strategy        []string        `json:"strategy" validate:"required,min=1,dive,oneof=primary_residence investment vacation_home not_sure"`
	Timeline        string          `json:"timeline" validate:"required,oneof=asap one_to_three_months three_to_six_months just_browsing"`
	PropertyAddress string          `json:"property_address" validate:"required_if=TransactionType sell"`
	Contact         Contact         `json:"contact"`
	TermsAccepted   bool            `json:"terms_accepted" validate:"eq=true"`
}

// LenderFormData is the full answer set for lender-finder sessions
type LenderFormData struct {
	LoanPurpose    string  `json:"loan_purpose" validate:"required,oneof=purchase refinance"`
	Location       string  `json:"location" validate:"required"`
	PurchasePrice  string  `json:"purchase_price" validate:"required"`
	DownPaymentPct int     `json:"down_payment_pct" validate:"min=0,max=100"`
	CreditScore    string  `json:"credit_score" validate:"required,oneof=excellent good fair poor"`
	Timeline       string  `json:"timeline" validate:"required,oneof=asap one_to_three_months three_to_six_months just_browsing"`
	Contact        Contact `json:"contact"`
	TermsAccepted  bool    `json:"terms_accepted" validate:"eq=true"`
}
