package echomock

import (
	"strings"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/tclass/web/core/session"
)

var errUserNotFound = errors.New("user not found")

type User struct {
	ID           int          `json:"id"`
	Name         string       `json:"name"`
	Email        string       `json:"email"`
	Role         session.Role `json:"role"`
	PasswordHash []byte       `json:"-"`
}

func (u *User) SetPassword(pwd string, cost int) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), cost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

// UserStore is an in-memory user table keyed by lowercased email.
type UserStore struct {
	mu    sync.RWMutex
	cost  int
	users map[string]User
}

func NewUserStore(cost int) *UserStore {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &UserStore{cost: cost, users: make(map[string]User)}
}

func (s *UserStore) Add(u User, pwd string) (User, error) {
	if err := u.SetPassword(pwd, s.cost); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u.ID = len(s.users) + 1
	u.Email = strings.ToLower(u.Email)
	s.users[u.Email] = u
	return u, nil
}

func (s *UserStore) GetByEmail(email string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[strings.ToLower(strings.TrimSpace(email))]; ok {
		return u, nil
	}
	return User{}, errUserNotFound
}

// SeedUsers adds one user per role, all sharing `pwd`:
// student@tclass.local, faculty@tclass.local and admin@tclass.local.
func SeedUsers(s *UserStore, pwd string) error {
	seed := []User{
		{Name: "Sam Student", Email: "student@tclass.local", Role: session.RoleStudent},
		{Name: "Fe Faculty", Email: "faculty@tclass.local", Role: session.RoleFaculty},
		{Name: "Ada Admin", Email: "admin@tclass.local", Role: session.RoleAdmin},
	}
	for _, u := range seed {
		if _, err := s.Add(u, pwd); err != nil {
			return errors.Wrapf(err, "adding %s", u.Email)
		}
	}
	return nil
}
