package admission

import (
	"bytes"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/tclass/web/core"
)

// Slot is the multipart field name an attachment is sent under.
type Slot string

const (
	SlotIDPicture        Slot = "id_picture"
	SlotOneByOne         Slot = "one_by_one_picture"
	SlotThumbmark        Slot = "right_thumbmark"
	SlotBirthCertificate Slot = "birth_certificate"
	SlotValidID          Slot = "valid_id_image"
)

var slotLabels = map[Slot]string{
	SlotIDPicture:        "ID picture",
	SlotOneByOne:         "1x1 photo",
	SlotThumbmark:        "Right thumbmark",
	SlotBirthCertificate: "Birth certificate",
	SlotValidID:          "Valid ID",
}

const noFileSelected = "No file selected"

func ParseSlot(s string) (Slot, bool) {
	slot := Slot(s)
	_, ok := slotLabels[slot]
	return slot, ok
}

func (s Slot) Label() string { return slotLabels[s] }

// Attachment is a file picked for one slot. It only ever lives in memory.
type Attachment struct {
	Slot        Slot
	Filename    string
	ContentType string
	Data        []byte
}

// Attachments holds at most one attachment per slot.
type Attachments map[Slot]Attachment

// AttachmentStatus is what the form shows for a slot.
type AttachmentStatus struct {
	Slot     Slot   `json:"slot"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
	Filename string `json:"filename"` // "No file selected" when empty
}

// Status lists every slot of the variant in display order.
func (atts Attachments) Status(v Variant) []AttachmentStatus {
	slots := v.Slots()
	statuses := make([]AttachmentStatus, 0, len(slots))
	for _, slot := range slots {
		st := AttachmentStatus{Slot: slot, Label: slot.Label(), Filename: noFileSelected}
		if at, ok := atts[slot]; ok {
			st.Selected = true
			st.Filename = at.Filename
		}
		statuses = append(statuses, st)
	}
	return statuses
}

func (atts Attachments) Has(slot Slot) bool {
	_, ok := atts[slot]
	return ok
}

// NewAttachment reads an uploaded image or PDF of at most maxBytes.
func NewAttachment(slot Slot, filename string, r io.Reader, maxBytes int64) (Attachment, error) {
	field := string(slot)
	filename = filepath.Base(core.CleanString(filename))
	if filename == "" || filename == "." || filename == string(filepath.Separator) {
		return Attachment{}, core.NewFieldError(field, "Please choose a file.")
	}

	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(r, maxBytes+1))
	if err != nil {
		return Attachment{}, errors.Wrap(err, "reading attachment")
	}
	if n == 0 {
		return Attachment{}, core.NewFieldError(field, "The selected file is empty.")
	}
	if n > maxBytes {
		return Attachment{}, core.NewFieldError(field, "The selected file is too large.")
	}

	data := buf.Bytes()
	ct := http.DetectContentType(data)
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = ct[:i]
	}
	if !(strings.HasPrefix(ct, "image/") || ct == "application/pdf") {
		return Attachment{}, core.NewFieldError(field, "Only image or PDF files are allowed.")
	}
	return Attachment{Slot: slot, Filename: filename, ContentType: ct, Data: data}, nil
}
