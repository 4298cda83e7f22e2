// Package contact handles messages sent from the public contact page.
package contact

import (
	"context"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/tclass/web/core"
)

const (
	MsgSent       = "Thank you! Your message has been sent."
	MsgSendFailed = "Failed to send your message. Please try again."
)

// Message is the contact form. Its json tags are the backend contract.
type Message struct {
	FirstName string `json:"first_name" form:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" form:"last_name" validate:"required,max=100"`
	Email     string `json:"email" form:"email" validate:"required,email"`
	Phone     string `json:"phone" form:"phone" validate:"omitempty,phone"`
	Message   string `json:"message" form:"message" validate:"required,max=5000"`
}

func (m *Message) clean() {
	m.FirstName = core.CleanString(m.FirstName)
	m.LastName = core.CleanString(m.LastName)
	m.Email = core.CleanString(m.Email, true)
	m.Phone = core.CleanString(m.Phone)
	m.Message = core.CleanString(m.Message)
}

type Backend interface {
	SubmitContact(ctx context.Context, m Message) error
}

type Service struct {
	backend    Backend
	validate   *validator.Validate
	translator ut.Translator
}

func NewService(backend Backend, validate *validator.Validate, translator ut.Translator) *Service {
	return &Service{backend: backend, validate: validate, translator: translator}
}

// Send validates and forwards the message.
func (svc *Service) Send(ctx context.Context, m Message) error {
	m.clean()
	if err := core.CheckStruct(svc.validate, svc.translator, m); err != nil {
		return err
	}
	return errors.Wrap(svc.backend.SubmitContact(ctx, m), "sending contact message")
}
