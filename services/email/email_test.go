package emailsvc

import (
	"net/mail"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tclass/web/core"
)

func testConfig() *core.Config {
	return &core.Config{AppName: "TClass", FrontendBaseURL: "http://localhost:3000", DefaultFromEmail: "registrar@tclass.test"}
}

func TestConsoleServiceMock_SendMessages(t *testing.T) {
	svc := NewConsoleServiceMock(testConfig())
	svc.SendMessages(
		&core.EmailMessage{To: []mail.Address{{Address: "juan@example.com"}}, Subject: "hi", BodyStr: "hello"},
		&core.EmailMessage{Subject: "no recipients", BodyStr: "dropped"},
		&core.EmailMessage{To: []mail.Address{{Address: "juan@example.com"}}, Subject: "empty"},
	)

	sent := svc.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "hi", sent[0].Subject)
	assert.Equal(t, "hello", sent[0].TextContent)
}

func TestConsoleService_format(t *testing.T) {
	svc := newConsoleService(testConfig(), core.NopLogger{})
	body, err := svc.format(core.EmailMessage{
		To:          []mail.Address{{Name: "Juan", Address: "juan@example.com"}},
		Subject:     "Application received",
		TextContent: "plain body",
		HTMLContent: "<p>html body</p>",
	})
	require.NoError(t, err)
	assert.Contains(t, body, `From: "TClass" <registrar@tclass.test>`)
	assert.Contains(t, body, "Subject: [TClass] Application received")
	assert.Contains(t, body, `To: "Juan" <juan@example.com>`)
	assert.Contains(t, body, "plain body")
	assert.Contains(t, body, "<p>html body</p>")
}

func TestSendgridService_prepare(t *testing.T) {
	conf := testConfig()
	conf.SendgridApiKey = "key"
	svc, ok := NewService(conf, core.NopLogger{}).(*sendgridService)
	require.True(t, ok)

	m := svc.prepare(core.EmailMessage{
		To:          []mail.Address{{Address: "juan@example.com"}},
		Subject:     "Application received",
		TextContent: "plain",
	})
	require.Len(t, m.Personalizations, 1)
	assert.Equal(t, "[TClass] Application received", m.Personalizations[0].Subject)
	assert.Equal(t, "juan@example.com", m.Personalizations[0].To[0].Address)
	require.Len(t, m.Content, 1)
	assert.Equal(t, "text/plain", m.Content[0].Type)
	assert.Equal(t, "registrar@tclass.test", m.From.Address)
	assert.Equal(t, []string{"tclass"}, m.Categories)
	assert.Nil(t, m.MailSettings)

	conf.TestMode = true
	svc = NewSendgridService(conf, core.NopLogger{}).(*sendgridService)
	m = svc.prepare(core.EmailMessage{To: []mail.Address{{Address: "juan@example.com"}}, TemplateName: "application_received"})
	assert.Equal(t, []string{"tclass", "tclass_application_received"}, m.Categories)
	require.NotNil(t, m.MailSettings)
	assert.True(t, *m.MailSettings.SandboxMode.Enable)

	_, isConsole := NewService(testConfig(), core.NopLogger{}).(*consoleService)
	assert.True(t, isConsole)
}
