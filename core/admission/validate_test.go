package admission

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tclass/web/core"
)

func completeVocational() (Form, Attachments) {
	f := DefaultForm()
	f.EmailAddress = "juan@example.com"
	f.ValidIDType = "Passport"
	f.EnrollmentPurposes = []string{"Employment"}
	atts := Attachments{
		SlotBirthCertificate: {Slot: SlotBirthCertificate, Filename: "bc.pdf"},
		SlotValidID:          {Slot: SlotValidID, Filename: "id.png"},
	}
	return f, atts
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		variant   Variant
		mutate    func(f *Form, atts Attachments)
		wantField string
		wantMsg   string
	}{
		{"admission needs only email", VariantAdmission, func(f *Form, atts Attachments) {
			delete(atts, SlotBirthCertificate)
			delete(atts, SlotValidID)
			f.ValidIDType = ""
			f.EnrollmentPurposes = nil
		}, "", ""},
		{"admission without email", VariantAdmission, func(f *Form, _ Attachments) { f.EmailAddress = "" }, "emailAddress", MsgEmailRequired},
		{"blank email", VariantAdmission, func(f *Form, _ Attachments) { f.EmailAddress = "   " }, "emailAddress", MsgEmailRequired},
		{"complete vocational", VariantVocational, func(*Form, Attachments) {}, "", ""},
		{"email checked first", VariantVocational, func(f *Form, atts Attachments) {
			f.EmailAddress = ""
			delete(atts, SlotBirthCertificate)
		}, "emailAddress", MsgEmailRequired},
		{"birth certificate", VariantVocational, func(f *Form, atts Attachments) {
			delete(atts, SlotBirthCertificate)
			f.ValidIDType = ""
		}, "birth_certificate", MsgBirthCertRequired},
		{"valid id type", VariantVocational, func(f *Form, atts Attachments) {
			f.ValidIDType = ""
			delete(atts, SlotValidID)
		}, "validIdType", MsgValidIDTypeRequired},
		{"others without specify", VariantVocational, func(f *Form, atts Attachments) {
			f.ValidIDType = OthersOption
			delete(atts, SlotValidID)
		}, "validIdTypeOther", MsgValidIDTypeSpecify},
		{"others with specify", VariantVocational, func(f *Form, _ Attachments) {
			f.ValidIDType = OthersOption
			f.ValidIDTypeOther = "Barangay ID"
		}, "", ""},
		{"valid id image", VariantVocational, func(_ *Form, atts Attachments) { delete(atts, SlotValidID) }, "valid_id_image", MsgValidIDImageRequired},
		{"no purpose", VariantVocational, func(f *Form, _ Attachments) { f.EnrollmentPurposes = []string{} }, "enrollmentPurposes", MsgPurposeRequired},
		{"other purpose unspecified", VariantVocational, func(f *Form, _ Attachments) {
			f.EnrollmentPurposes = []string{"Employment", OthersOption}
		}, "enrollmentPurposeOthers", MsgPurposeOthersRequired},
		{"other purpose specified", VariantVocational, func(f *Form, _ Attachments) {
			f.EnrollmentPurposes = []string{OthersOption}
			f.EnrollmentPurposeOthers = "Hobby"
		}, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, atts := completeVocational()
			tt.mutate(&f, atts)

			err := Validate(tt.variant, f, atts)
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			var verr *core.ValidationError
			require.True(t, errors.As(err, &verr))
			require.Len(t, verr.Fields, 1)
			assert.Equal(t, tt.wantField, verr.Fields[0].Field)
			assert.Equal(t, tt.wantMsg, err.Error())
		})
	}
}

func TestValidate_OthersMessageIsDistinct(t *testing.T) {
	assert.NotEqual(t, MsgValidIDTypeSpecify, MsgValidIDTypeRequired)
	assert.NotEqual(t, MsgValidIDTypeSpecify, MsgValidIDImageRequired)
}
