package draft

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type parent struct {
	Name       string `json:"name"`
	Occupation string `json:"occupation"`
}

type testForm struct {
	FirstName string   `json:"firstName"`
	Purposes  []string `json:"purposes"`
	Father    parent   `json:"father"`
}

func TestPatch(t *testing.T) {
	tests := []struct {
		name    string
		field   string
		values  []string
		want    testForm
		wantErr error
	}{
		{name: "scalar", field: "firstName", values: []string{"Ana", "ignored"}, want: testForm{FirstName: "Ana", Purposes: []string{"x"}, Father: parent{Name: "Jo"}}},
		{name: "scalar cleared", field: "firstName", want: testForm{Purposes: []string{"x"}, Father: parent{Name: "Jo"}}},
		{name: "nested", field: "father.occupation", values: []string{"Farmer"}, want: testForm{FirstName: "Li", Purposes: []string{"x"}, Father: parent{Name: "Jo", Occupation: "Farmer"}}},
		{name: "list", field: "purposes", values: []string{"a", "", "b"}, want: testForm{FirstName: "Li", Purposes: []string{"a", "b"}, Father: parent{Name: "Jo"}}},
		{name: "unknown", field: "lastName", values: []string{"x"}, wantErr: ErrUnknownField},
		{name: "unknown nested", field: "mother.name", values: []string{"x"}, wantErr: ErrUnknownField},
		{name: "object", field: "father", values: []string{"x"}, wantErr: ErrUnknownField},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := testForm{FirstName: "Li", Purposes: []string{"x"}, Father: parent{Name: "Jo"}}
			err := Patch(&form, tt.field, tt.values)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, errors.Cause(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, form)
		})
	}
}

func TestParseKey(t *testing.T) {
	k, ok := ParseKey("admission")
	assert.True(t, ok)
	assert.Equal(t, AdmissionKey, k)

	k, ok = ParseKey("tclass_vocational_form_draft_v1")
	assert.True(t, ok)
	assert.Equal(t, VocationalKey, k)

	_, ok = ParseKey("enrollment")
	assert.False(t, ok)

	assert.Equal(t, "tclass_admission_form_draft_v1:abc", StorageID(AdmissionKey, "abc"))
}

func TestErrNotFound_wrapped(t *testing.T) {
	err := errors.Wrap(ErrNotFound, "loading draft")
	assert.Equal(t, ErrNotFound, errors.Cause(err))
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "loading draft: draft not found", err.Error())
}
