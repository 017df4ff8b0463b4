package validation

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"homefinder/pkg/models"
)

var (
	// Use a singleton validator instance to avoid recreating it
	validatorInstance *validator.Validate
	validatorOnce     sync.Once
)

func getValidator() *validator.Validate {
	validatorOnce.Do(func() {
		validatorInstance = validator.New()

		// register function to get tag name from json tags.
		validatorInstance.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})

	return validatorInstance
}

// messages provides the user-facing text for schema failures, keyed by
// "field_path.tag". Anything not listed falls back to a per-tag
// generic so no failure is ever dropped silently.
var messages = map[string]string{
	"transaction_type.required": "Tell us whether you want to buy or sell",
	"location.required":         "Enter a location as City, State",
	"price_min.required_unless": "Enter a minimum price",
	"price_max.required_unless": "Enter a maximum price",
	"target_price.required_if":  "Enter your target sale price",
	"purchase_price.required":   "Enter a purchase price",
	"property_type.required":    "Select a property type",
	"property_address.required_if": "Enter the address of the property you are selling",
	"strategy.required":         "Select at least one strategy",
	"strategy.min":              "Select at least one strategy",
	"timeline.required":         "Select a timeline",
	"loan_purpose.required":     "Tell us what the loan is for",
	"credit_score.required":     "Select a credit score range",
	"contact.first_name.required": "Enter your first name",
	"contact.last_name.required":  "Enter your last name",
	"contact.email.required":      "Enter your email address",
	"contact.email.email":         "Enter a valid email address",
	"contact.phone.required":      "Enter your phone number",
	"contact.phone.min":           "Enter a valid phone number",
	"terms_accepted.eq":           "You must accept the terms to continue",
}

var tagFallbacks = map[string]string{
	"required":        "This field is required",
	"required_if":     "This field is required",
	"required_unless": "This field is required",
	"email":       "Enter a valid email address",
	"oneof":       "Select a valid option",
	"min":         "This value is too short",
	"max":         "This value is too large",
	"eq":          "This value is not allowed",
}

// validateStruct runs the schema check and flattens the result into a
// field path -> message map. Paths are dot-separated JSON names with
// the root struct name stripped, e.g. "contact.email".
func validateStruct(input any) map[string]string {
	err := getValidator().Struct(input)
	if err == nil {
		return map[string]string{}
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"form": err.Error()}
	}

	errs := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		path := fe.Namespace()
		if i := strings.Index(path, "."); i >= 0 {
			path = path[i+1:]
		}
		// strategy[0] -> strategy for message lookup and display
		if i := strings.Index(path, "["); i >= 0 {
			path = path[:i]
		}

		msg := messages[path+"."+fe.Tag()]
		if msg == "" {
			msg = tagFallbacks[fe.Tag()]
		}
		if msg == "" {
			msg = fmt.Sprintf("Invalid value for %s", path)
		}
		if _, seen := errs[path]; !seen {
			errs[path] = msg
		}
	}
	return errs
}

// ValidateAgent checks an agent form against the schema and the custom
// field validators. Custom validator messages win over schema messages
// for the same field. A nil result means the form is valid.
func ValidateAgent(form *models.AgentFormData) map[string]string {
	errs := validateStruct(form)

	if !ValidateLocation(form.Location) {
		errs["location"] = "Enter a location as City, State"
	}
	if form.TransactionType == models.TransactionSell {
		// sellers quote a single target price, no range to check
		if !ValidatePrice(form.TargetPrice) {
			errs["target_price"] = fmt.Sprintf("Enter a price of at least $%d", MinPrice)
		}
	} else {
		switch {
		case !ValidatePrice(form.PriceMin):
			errs["price_min"] = fmt.Sprintf("Enter a price of at least $%d", MinPrice)
		case !ValidatePrice(form.PriceMax):
			errs["price_max"] = fmt.Sprintf("Enter a price of at least $%d", MinPrice)
		case !ValidatePriceRange(form.PriceMin, form.PriceMax):
			errs["price_max"] = "Maximum price must be greater than minimum price"
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ValidateLender checks a lender form the same way ValidateAgent
// checks an agent form
func ValidateLender(form *models.LenderFormData) map[string]string {
	errs := validateStruct(form)

	if !ValidateLocation(form.Location) {
		errs["location"] = "Enter a location as City, State"
	}
	if !ValidatePrice(form.PurchasePrice) {
		errs["purchase_price"] = fmt.Sprintf("Enter a price of at least $%d", MinPrice)
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}
