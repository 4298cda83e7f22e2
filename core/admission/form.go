// Package admission implements the draft-backed admission and vocational
// enrollment forms: hydration from a persisted draft, edits, attachments,
// validation and the one-shot multipart submission.
package admission

import (
	"github.com/tclass/web/core"
	"github.com/tclass/web/core/draft"
)

type Variant string

const (
	VariantAdmission  Variant = "admission"
	VariantVocational Variant = "vocational"
)

func ParseVariant(s string) (Variant, bool) {
	switch v := Variant(s); v {
	case VariantAdmission, VariantVocational:
		return v, true
	}
	return "", false
}

// DraftKey is where drafts of the variant are persisted.
func (v Variant) DraftKey() draft.Key {
	if v == VariantVocational {
		return draft.VocationalKey
	}
	return draft.AdmissionKey
}

// Slots lists the attachment slots the variant accepts.
func (v Variant) Slots() []Slot {
	if v == VariantVocational {
		return []Slot{SlotIDPicture, SlotOneByOne, SlotThumbmark, SlotBirthCertificate, SlotValidID}
	}
	return []Slot{SlotIDPicture, SlotOneByOne, SlotThumbmark}
}

func (v Variant) accepts(slot Slot) bool {
	for _, s := range v.Slots() {
		if s == slot {
			return true
		}
	}
	return false
}

// OthersOption is the choice that requires a free-text "specify" field.
const OthersOption = "Others"

var (
	ValidIDTypes = []string{
		"PhilSys National ID", "Passport", "Driver's License", "UMID", "SSS ID",
		"Postal ID", "Voter's ID", "PRC ID", "Student ID", OthersOption,
	}
	EnrollmentPurposes = []string{
		"Employment", "Further Studies", "Skills Upgrading", "Entrepreneurship",
		"Certification", OthersOption,
	}
)

type (
	Address struct {
		Street   string `json:"street"`
		Barangay string `json:"barangay"`
		City     string `json:"city"`
		Province string `json:"province"`
		ZipCode  string `json:"zipCode"`
	}

	Relative struct {
		Name       string `json:"name"`
		Occupation string `json:"occupation"`
		ContactNo  string `json:"contactNo"`
	}

	School struct {
		Name          string `json:"name"`
		YearGraduated string `json:"yearGraduated"`
	}

	Education struct {
		Elementary School `json:"elementary"`
		Secondary  School `json:"secondary"`
		Tertiary   School `json:"tertiary"`
	}

	// Form is the whole in-progress state of one admission or vocational form.
	// Every field is a string, a string list or a nested object so that a draft
	// can be merged field by field over DefaultForm.
	Form struct {
		FirstName  string `json:"firstName"`
		MiddleName string `json:"middleName"`
		LastName   string `json:"lastName"`
		Suffix     string `json:"suffix"`

		Age             string `json:"age"`
		Gender          string `json:"gender"`
		BirthDate       string `json:"birthDate"`
		BirthPlace      string `json:"birthPlace"`
		CivilStatus     string `json:"civilStatus"`
		Nationality     string `json:"nationality"`
		Religion        string `json:"religion"`
		EmailAddress    string `json:"emailAddress"`
		ContactNo       string `json:"contactNo"`
		FacebookAccount string `json:"facebookAccount"`

		Address Address `json:"address"`

		PrimaryCourse   string `json:"primaryCourse"`
		SecondaryCourse string `json:"secondaryCourse"`

		Father    Relative  `json:"father"`
		Mother    Relative  `json:"mother"`
		Guardian  Relative  `json:"guardian"`
		Education Education `json:"education"`

		// vocational only
		ValidIDType             string   `json:"validIdType"`
		ValidIDTypeOther        string   `json:"validIdTypeOther"`
		EnrollmentPurposes      []string `json:"enrollmentPurposes"`
		EnrollmentPurposeOthers string   `json:"enrollmentPurposeOthers"`
	}
)

// DefaultForm is the empty form a first visit starts from.
func DefaultForm() Form {
	return Form{
		Nationality:        "Filipino",
		EnrollmentPurposes: []string{},
	}
}

// FullName joins the non-empty name parts in first, middle, last, suffix order.
func (f Form) FullName() string {
	return core.JoinNonEmpty(f.FirstName, f.MiddleName, f.LastName, f.Suffix)
}

// HasPurpose reports whether `purpose` is among the selected enrollment purposes.
func (f Form) HasPurpose(purpose string) bool {
	for _, p := range f.EnrollmentPurposes {
		if p == purpose {
			return true
		}
	}
	return false
}

// ValidIDLabel is the valid ID type as the backend should record it.
func (f Form) ValidIDLabel() string {
	if f.ValidIDType == OthersOption {
		return core.CleanString(f.ValidIDTypeOther)
	}
	return f.ValidIDType
}
