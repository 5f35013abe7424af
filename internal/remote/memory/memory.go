// Package memory is an in-process data service for local development and tests.
// Nothing survives a restart.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"expensetracker/internal/auth"
	"expensetracker/internal/core"
	"expensetracker/internal/remote"
)

type account struct {
	user core.User
	hash string
}

type storedPhoto struct {
	owner string
	photo core.Photo
}

type Store struct {
	mu       sync.Mutex
	accounts map[string]account // by email
	cats     []core.Category
	items    []core.ExpenseEntry
	photos   map[string]storedPhoto
	now      func() time.Time
}

func New() *Store {
	return &Store{
		accounts: map[string]account{},
		photos:   map[string]storedPhoto{},
		now:      time.Now,
	}
}

// Ensure interface conformance
var (
	_ auth.UserStore     = (*Store)(nil)
	_ remote.PhotoReader = (*Store)(nil)
	_ remote.Backend     = (*Backend)(nil)
)

func (s *Store) CreateUser(_ context.Context, email, hash string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[email]; ok {
		return core.User{}, core.ErrEmailAlreadyInUse
	}
	u := core.User{ID: uuid.NewString(), Email: email}
	s.accounts[email] = account{user: u, hash: hash}
	return u, nil
}

func (s *Store) FindUserByEmail(_ context.Context, email string) (core.User, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[email]
	if !ok {
		return core.User{}, "", core.ErrInvalidCredentials
	}
	return a.user, a.hash, nil
}

// ReadPhoto returns the photo only to the user who uploaded it.
func (s *Store) ReadPhoto(_ context.Context, ownerID, id string) (core.Photo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.photos[id]
	if !ok || p.owner != ownerID {
		return core.Photo{}, core.ErrPhotoNotFound
	}
	return p.photo, nil
}

// Backend pairs the store with local token authentication.
type Backend struct {
	*auth.Local
	store *Store
}

func NewBackend(store *Store, tokens *auth.Tokens) *Backend {
	return &Backend{Local: auth.NewLocal(store, tokens), store: store}
}

func (b *Backend) Store() *Store { return b.store }

func (b *Backend) DataFor(sess core.Session) remote.DataService {
	return &userData{store: b.store, userID: sess.User.ID}
}

// userData is the store seen through one user's eyes.
type userData struct {
	store  *Store
	userID string
}

func (d *userData) AddCategory(_ context.Context, c core.Category) error {
	if err := c.Validate(); err != nil {
		return err
	}
	s := d.store
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = uuid.NewString()
	c.UserID = d.userID
	c.CreatedAt = s.now()
	s.cats = append(s.cats, c)
	return nil
}

func (d *userData) GetCategories(_ context.Context) ([]core.Category, error) {
	s := d.store
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Category
	for _, c := range s.cats {
		if c.UserID == d.userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (d *userData) AddExpense(_ context.Context, e core.ExpenseEntry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	s := d.store
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = uuid.NewString()
	e.UserID = d.userID
	e.CreatedAt = s.now()
	s.items = append(s.items, e)
	return nil
}

func (d *userData) GetExpenses(_ context.Context) ([]core.ExpenseEntry, error) {
	s := d.store
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.ExpenseEntry
	for _, e := range s.items {
		if e.UserID == d.userID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (d *userData) UploadPhoto(_ context.Context, p core.Photo) (string, error) {
	if p.IsEmpty() {
		return "", core.ErrInvalidPhoto
	}
	s := d.store
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString() + extension(p.Name)
	s.photos[id] = storedPhoto{
		owner: d.userID,
		photo: core.Photo{
			Name:        p.Name,
			ContentType: p.ContentType,
			Data:        append([]byte(nil), p.Data...),
		},
	}
	return remote.PhotoURL(id), nil
}

func extension(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 && i < len(name)-1 {
		return strings.ToLower(name[i:])
	}
	return ""
}
