// Package repotest provides an in-memory RepositoryFactory for service and
// controller tests. It understands the specifications the services use and
// nothing else; an unknown specification panics so a test cannot silently
// pass on an unfiltered query.
package repotest

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"lumina-be/internal/access"
	"lumina-be/internal/entity"
	"lumina-be/internal/repository/contract"
	"lumina-be/internal/repository/specification"
	"lumina-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// Store holds all rows. It is safe for concurrent use.
type Store struct {
	mu     sync.Mutex
	users  map[uuid.UUID]entity.User
	notes  map[uuid.UUID]entity.Note
	tokens map[uuid.UUID]entity.AuthToken

	// Err, when set, is returned by every repository call.
	Err error
}

func NewStore() *Store {
	return &Store{
		users:  map[uuid.UUID]entity.User{},
		notes:  map[uuid.UUID]entity.Note{},
		tokens: map[uuid.UUID]entity.AuthToken{},
	}
}

func (s *Store) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &unitOfWork{store: s}
}

var _ unitofwork.RepositoryFactory = (*Store)(nil)

// AddUser inserts user directly, assigning an id when it has none.
func (s *Store) AddUser(user *entity.User) *entity.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.Id == uuid.Nil {
		user.Id = uuid.New()
	}
	if user.DateJoined.IsZero() {
		user.DateJoined = time.Now().UTC()
	}
	s.users[user.Id] = *user
	return user
}

// AddNote inserts note directly, bypassing ownership checks.
func (s *Store) AddNote(note *entity.Note) *entity.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	if note.Id == uuid.Nil {
		note.Id = uuid.Must(uuid.NewV7())
	}
	s.notes[note.Id] = *note
	return note
}

func (s *Store) Note(id uuid.UUID) (entity.Note, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notes[id]
	return n, ok
}

func (s *Store) User(id uuid.UUID) (entity.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	return u, ok
}

func (s *Store) NoteCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.notes)
}

func (s *Store) TokensOf(userId uuid.UUID) []entity.AuthToken {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.AuthToken
	for _, t := range s.tokens {
		if t.UserId == userId {
			out = append(out, t)
		}
	}
	return out
}

type snapshot struct {
	users  map[uuid.UUID]entity.User
	notes  map[uuid.UUID]entity.Note
	tokens map[uuid.UUID]entity.AuthToken
}

func (s *Store) snapshot() *snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &snapshot{
		users:  copyMap(s.users),
		notes:  copyMap(s.notes),
		tokens: copyMap(s.tokens),
	}
}

func (s *Store) restore(snap *snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users, s.notes, s.tokens = snap.users, snap.notes, snap.tokens
}

func copyMap[V any](m map[uuid.UUID]V) map[uuid.UUID]V {
	out := make(map[uuid.UUID]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// unitOfWork implements transactions by snapshotting the store on Begin.
type unitOfWork struct {
	store *Store
	snap  *snapshot
}

func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.snap != nil {
		return fmt.Errorf("transaction already started")
	}
	u.snap = u.store.snapshot()
	return nil
}

func (u *unitOfWork) Commit() error {
	if u.snap == nil {
		return fmt.Errorf("no transaction to commit")
	}
	u.snap = nil
	return nil
}

func (u *unitOfWork) Rollback() error {
	if u.snap == nil {
		return fmt.Errorf("no transaction to rollback")
	}
	u.store.restore(u.snap)
	u.snap = nil
	return nil
}

func (u *unitOfWork) UserRepository() contract.UserRepository {
	return &userRepo{store: u.store}
}

func (u *unitOfWork) AuthTokenRepository() contract.AuthTokenRepository {
	return &tokenRepo{store: u.store}
}

func (u *unitOfWork) Notes(caller entity.Caller) *access.ScopedNotes {
	return access.NewScopedNotes(&noteRepo{store: u.store}, caller)
}

// NoteRepository exposes the unscoped fake, for tests of the access layer.
func (s *Store) NoteRepository() contract.NoteRepository {
	return &noteRepo{store: s}
}

type noteRepo struct {
	store *Store
}

func (r *noteRepo) Create(ctx context.Context, note *entity.Note) error {
	if r.store.Err != nil {
		return r.store.Err
	}
	r.store.AddNote(note)
	return nil
}

func (r *noteRepo) Update(ctx context.Context, note *entity.Note) (int64, error) {
	if r.store.Err != nil {
		return 0, r.store.Err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	cur, ok := r.store.notes[note.Id]
	if !ok || cur.UserId != note.UserId {
		return 0, nil
	}
	cur.Title, cur.Text, cur.UpdatedAt = note.Title, note.Text, note.UpdatedAt
	r.store.notes[note.Id] = cur
	return 1, nil
}

func (r *noteRepo) Delete(ctx context.Context, specs ...specification.Specification) (int64, error) {
	if r.store.Err != nil {
		return 0, r.store.Err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var n int64
	for id, note := range r.store.notes {
		if matchNote(note, specs) {
			delete(r.store.notes, id)
			n++
		}
	}
	return n, nil
}

func (r *noteRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Note, error) {
	all, err := r.FindAll(ctx, specs...)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return all[0], nil
}

func (r *noteRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Note, error) {
	if r.store.Err != nil {
		return nil, r.store.Err
	}
	r.store.mu.Lock()
	var out []*entity.Note
	for _, note := range r.store.notes {
		if matchNote(note, specs) {
			n := note
			out = append(out, &n)
		}
	}
	r.store.mu.Unlock()

	sortNotes(out, specs)
	for _, spec := range specs {
		if l, ok := spec.(specification.Limit); ok && len(out) > l.N {
			out = out[:l.N]
		}
	}
	return out, nil
}

func (r *noteRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, err := r.FindAll(ctx, specs...)
	return int64(len(all)), err
}

func matchNote(note entity.Note, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if note.Id != s.ID {
				return false
			}
		case specification.UserOwnedBy:
			if note.UserId != s.UserID {
				return false
			}
		case specification.NoteSearchQuery:
			q := strings.ToLower(strings.TrimSpace(s.Query))
			if !strings.Contains(strings.ToLower(note.Title), q) &&
				!strings.Contains(strings.ToLower(note.Text), q) {
				return false
			}
		case specification.OrderBy, specification.Limit:
		default:
			panic(fmt.Sprintf("repotest: unsupported note specification %T", spec))
		}
	}
	return true
}

func sortNotes(notes []*entity.Note, specs []specification.Specification) {
	var orders []specification.OrderBy
	for _, spec := range specs {
		if o, ok := spec.(specification.OrderBy); ok {
			orders = append(orders, o)
		}
	}
	if len(orders) == 0 {
		return
	}

	sort.SliceStable(notes, func(i, j int) bool {
		for _, o := range orders {
			c := compareNoteField(notes[i], notes[j], o.Field)
			if c == 0 {
				continue
			}
			if o.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

func compareNoteField(a, b *entity.Note, field string) int {
	switch field {
	case "created_at":
		return a.CreatedAt.Compare(b.CreatedAt)
	case "updated_at":
		return a.UpdatedAt.Compare(b.UpdatedAt)
	case "id":
		return bytes.Compare(a.Id[:], b.Id[:])
	case "title":
		return strings.Compare(a.Title, b.Title)
	}
	panic("repotest: unsupported order field " + field)
}

type userRepo struct {
	store *Store
}

func (r *userRepo) Create(ctx context.Context, user *entity.User) error {
	if r.store.Err != nil {
		return r.store.Err
	}
	r.store.mu.Lock()
	for _, u := range r.store.users {
		if u.Username == user.Username {
			r.store.mu.Unlock()
			return fmt.Errorf("duplicate key value violates unique constraint \"idx_users_username\"")
		}
	}
	r.store.mu.Unlock()
	r.store.AddUser(user)
	return nil
}

func (r *userRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if r.store.Err != nil {
		return r.store.Err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.users, id)
	return nil
}

func (r *userRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	if r.store.Err != nil {
		return nil, r.store.Err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, u := range r.store.users {
		if matchUser(u, specs) {
			found := u
			return &found, nil
		}
	}
	return nil, nil
}

func (r *userRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	if r.store.Err != nil {
		return 0, r.store.Err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var n int64
	for _, u := range r.store.users {
		if matchUser(u, specs) {
			n++
		}
	}
	return n, nil
}

func (r *userRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	if r.store.Err != nil {
		return r.store.Err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if u, ok := r.store.users[id]; ok {
		u.LastLogin = &at
		r.store.users[id] = u
	}
	return nil
}

func matchUser(u entity.User, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if u.Id != s.ID {
				return false
			}
		case specification.ByUsername:
			if u.Username != s.Username {
				return false
			}
		default:
			panic(fmt.Sprintf("repotest: unsupported user specification %T", spec))
		}
	}
	return true
}

type tokenRepo struct {
	store *Store
}

func (r *tokenRepo) Create(ctx context.Context, token *entity.AuthToken) error {
	if r.store.Err != nil {
		return r.store.Err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if token.Id == uuid.Nil {
		token.Id = uuid.New()
	}
	r.store.tokens[token.Id] = *token
	return nil
}

func (r *tokenRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.AuthToken, error) {
	if r.store.Err != nil {
		return nil, r.store.Err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, t := range r.store.tokens {
		if matchToken(t, specs) {
			found := t
			return &found, nil
		}
	}
	return nil, nil
}

func (r *tokenRepo) DeleteByHash(ctx context.Context, hash string) (int64, error) {
	if r.store.Err != nil {
		return 0, r.store.Err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var n int64
	for id, t := range r.store.tokens {
		if t.TokenHash == hash {
			delete(r.store.tokens, id)
			n++
		}
	}
	return n, nil
}

func (r *tokenRepo) DeleteAllByUserId(ctx context.Context, userId uuid.UUID) error {
	if r.store.Err != nil {
		return r.store.Err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for id, t := range r.store.tokens {
		if t.UserId == userId {
			delete(r.store.tokens, id)
		}
	}
	return nil
}

func matchToken(t entity.AuthToken, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if t.Id != s.ID {
				return false
			}
		case specification.ByTokenHash:
			if t.TokenHash != s.Hash {
				return false
			}
		case specification.UserOwnedBy:
			if t.UserId != s.UserID {
				return false
			}
		default:
			panic(fmt.Sprintf("repotest: unsupported token specification %T", spec))
		}
	}
	return true
}
