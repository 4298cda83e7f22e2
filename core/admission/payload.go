package admission

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strings"

	"github.com/pkg/errors"
)

// Field is one text part of the submission.
type Field struct {
	Name  string
	Value string
}

// Payload is the multipart submission: text fields in order, then one file per
// filled slot.
type Payload struct {
	Variant Variant
	Fields  []Field
	Files   []Attachment
}

// Get returns every value sent under `name`.
func (p Payload) Get(name string) []string {
	var vals []string
	for _, f := range p.Fields {
		if f.Name == name {
			vals = append(vals, f.Value)
		}
	}
	return vals
}

// BuildPayload maps the form and its attachments to the backend's multipart contract.
func BuildPayload(v Variant, f Form, atts Attachments) (Payload, error) {
	formData, err := json.Marshal(f)
	if err != nil {
		return Payload{}, errors.Wrap(err, "encoding form_data")
	}

	p := Payload{Variant: v}
	add := func(name, value string) { p.Fields = append(p.Fields, Field{name, value}) }

	add("full_name", f.FullName())
	add("age", strings.TrimSpace(f.Age))
	add("gender", f.Gender)
	add("primary_course", f.PrimaryCourse)
	add("secondary_course", f.SecondaryCourse)
	add("email", strings.TrimSpace(f.EmailAddress))
	add("application_type", string(v))
	add("valid_id_type", f.ValidIDLabel())
	add("facebook_account", f.FacebookAccount)
	add("contact_no", f.ContactNo)
	for _, purpose := range f.EnrollmentPurposes {
		add("enrollment_purposes[]", purpose)
	}
	add("enrollment_purpose_others", f.EnrollmentPurposeOthers)
	add("form_data", string(formData))

	for _, slot := range v.Slots() {
		if at, ok := atts[slot]; ok {
			p.Files = append(p.Files, at)
		}
	}
	return p, nil
}

// Encode writes the payload as multipart/form-data and returns the body with its content type.
func (p Payload) Encode() (*bytes.Buffer, string, error) {
	body := new(bytes.Buffer)
	w := multipart.NewWriter(body)

	for _, f := range p.Fields {
		if err := w.WriteField(f.Name, f.Value); err != nil {
			return nil, "", errors.Wrapf(err, "writing field %s", f.Name)
		}
	}
	for _, at := range p.Files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			escapeQuotes(string(at.Slot)), escapeQuotes(at.Filename)))
		h.Set("Content-Type", at.ContentType)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", errors.Wrapf(err, "creating part %s", at.Slot)
		}
		if _, err := part.Write(at.Data); err != nil {
			return nil, "", errors.Wrapf(err, "writing part %s", at.Slot)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", errors.Wrap(err, "closing multipart writer")
	}
	return body, w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string { return quoteEscaper.Replace(s) }
