package admission

import (
	"strings"

	"github.com/tclass/web/core"
)

// validation messages, in evaluation order
const (
	MsgEmailRequired         = "Email address is required."
	MsgBirthCertRequired     = "Birth certificate is required."
	MsgValidIDTypeRequired   = "Please select a valid ID type."
	MsgValidIDTypeSpecify    = "Please specify the valid ID type."
	MsgValidIDImageRequired  = "Valid ID image is required."
	MsgPurposeRequired       = "Please select at least one enrollment purpose."
	MsgPurposeOthersRequired = "Please specify the other enrollment purpose."
)

type check struct {
	field string
	msg   string
	fails func(f Form, atts Attachments) bool
}

var (
	commonChecks = []check{
		{"emailAddress", MsgEmailRequired, func(f Form, _ Attachments) bool {
			return strings.TrimSpace(f.EmailAddress) == ""
		}},
	}

	vocationalChecks = []check{
		{string(SlotBirthCertificate), MsgBirthCertRequired, func(_ Form, atts Attachments) bool {
			return !atts.Has(SlotBirthCertificate)
		}},
		{"validIdType", MsgValidIDTypeRequired, func(f Form, _ Attachments) bool {
			return strings.TrimSpace(f.ValidIDType) == ""
		}},
		{"validIdTypeOther", MsgValidIDTypeSpecify, func(f Form, _ Attachments) bool {
			return f.ValidIDType == OthersOption && strings.TrimSpace(f.ValidIDTypeOther) == ""
		}},
		{string(SlotValidID), MsgValidIDImageRequired, func(_ Form, atts Attachments) bool {
			return !atts.Has(SlotValidID)
		}},
		{"enrollmentPurposes", MsgPurposeRequired, func(f Form, _ Attachments) bool {
			return len(f.EnrollmentPurposes) == 0
		}},
		{"enrollmentPurposeOthers", MsgPurposeOthersRequired, func(f Form, _ Attachments) bool {
			return f.HasPurpose(OthersOption) && strings.TrimSpace(f.EnrollmentPurposeOthers) == ""
		}},
	}
)

// Validate gates a submission. Checks run in a fixed order and the first failing
// one is returned alone, as a *core.ValidationError naming its field.
func Validate(v Variant, f Form, atts Attachments) error {
	checks := commonChecks
	if v == VariantVocational {
		checks = append(append([]check{}, commonChecks...), vocationalChecks...)
	}
	for _, c := range checks {
		if c.fails(f, atts) {
			return core.NewFieldError(c.field, c.msg)
		}
	}
	return nil
}
