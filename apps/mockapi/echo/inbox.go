package echomock

import (
	"fmt"
	"sync"

	"github.com/tclass/web/core/contact"
	"github.com/tclass/web/core/enrollment"
)

type (
	// Application is a received admission or vocational form.
	Application struct {
		Reference string
		Applicant string // bearer email, "" for anonymous applicants
		Fields    map[string][]string
		Files     map[string]string // part name -> filename
	}

	// Enlistment is a received enrollment commit.
	Enlistment struct {
		Student      string
		Term         enrollment.Term
		SubjectCodes []string
	}
)

// Inbox keeps everything the mock backend received.
type Inbox struct {
	mu           sync.RWMutex
	applications []Application
	contacts     []contact.Message
	enlistments  []Enlistment
}

func NewInbox() *Inbox {
	return &Inbox{}
}

func (in *Inbox) addApplication(app Application) Application {
	in.mu.Lock()
	defer in.mu.Unlock()
	app.Reference = fmt.Sprintf("ADM-%06d", len(in.applications)+1)
	in.applications = append(in.applications, app)
	return app
}

func (in *Inbox) addContact(m contact.Message) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.contacts = append(in.contacts, m)
}

func (in *Inbox) addEnlistment(e Enlistment) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.enlistments = append(in.enlistments, e)
}

func (in *Inbox) Applications() []Application {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return append([]Application(nil), in.applications...)
}

func (in *Inbox) Contacts() []contact.Message {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return append([]contact.Message(nil), in.contacts...)
}

func (in *Inbox) Enlistments() []Enlistment {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return append([]Enlistment(nil), in.enlistments...)
}
