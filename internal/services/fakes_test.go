package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"eventbooking/internal/booking"
	"eventbooking/internal/domain"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

const testTimeout = 5 * time.Second

// fakePasswordHasher implements domain.PasswordHasher for tests.
type fakePasswordHasher struct {
	salt string
}

func (f *fakePasswordHasher) GenerateSalt() (string, error) { return f.salt, nil }
func (f *fakePasswordHasher) Hash(salt, password string) (string, error) {
	return "hash-" + password, nil
}
func (f *fakePasswordHasher) Compare(hash, salt, password string) error {
	if hash != "hash-"+password {
		return errors.New("mismatch")
	}
	return nil
}

// fakeTokenIssuer implements domain.TokenIssuer for tests.
type fakeTokenIssuer struct {
	lastRole string
	err      error
}

func (f *fakeTokenIssuer) Issue(userID, email, role string, expiry time.Duration) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.lastRole = role
	return "token-" + userID, nil
}

// fakeUserRepo implements domain.UserRepository for tests.
type fakeUserRepo struct {
	byID      map[string]*domain.User
	byEmail   map[string]*domain.User
	nextID    int
	getErr    error
	updateErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:    make(map[string]*domain.User),
		byEmail: make(map[string]*domain.User),
	}
}

func (f *fakeUserRepo) add(u *domain.User) {
	f.byID[u.ID] = u
	f.byEmail[u.Email] = u
}

func (f *fakeUserRepo) Create(ctx context.Context, u *domain.User) error {
	if _, ok := f.byEmail[u.Email]; ok {
		return domain.ErrDuplicateEmail
	}
	f.nextID++
	u.ID = fmt.Sprintf("user-%d", f.nextID)
	f.add(u)
	return nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if u, ok := f.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) Update(ctx context.Context, u *domain.User) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.byID[u.ID]; !ok {
		return domain.ErrUserNotFound
	}
	if existing, ok := f.byEmail[u.Email]; ok && existing.ID != u.ID {
		return domain.ErrDuplicateEmail
	}
	f.add(u)
	return nil
}

// fakeEmployeeRepo implements domain.EmployeeRepository for tests.
type fakeEmployeeRepo struct {
	byEmail   map[string]*domain.Employee
	loggedIn  []string
	createErr error
}

func newFakeEmployeeRepo() *fakeEmployeeRepo {
	return &fakeEmployeeRepo{byEmail: make(map[string]*domain.Employee)}
}

func (f *fakeEmployeeRepo) Create(ctx context.Context, e *domain.Employee) error {
	if f.createErr != nil {
		return f.createErr
	}
	e.ID = "emp-" + e.Email
	f.byEmail[e.Email] = e
	return nil
}

func (f *fakeEmployeeRepo) GetByEmail(ctx context.Context, email string) (*domain.Employee, error) {
	if e, ok := f.byEmail[email]; ok {
		return e, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEmployeeRepo) List(ctx context.Context) ([]*domain.Employee, error) {
	out := make([]*domain.Employee, 0, len(f.byEmail))
	for _, e := range f.byEmail {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (f *fakeEmployeeRepo) MarkLoggedIn(ctx context.Context, userID string) error {
	f.loggedIn = append(f.loggedIn, userID)
	for _, e := range f.byEmail {
		if e.UserID == userID {
			e.HasLoggedIn = true
			e.InviteStatus = domain.InviteStatusAccepted
		}
	}
	return nil
}

// fakeEventRepo is an in-memory EventRepository for tests.
type fakeEventRepo struct {
	byTitle map[string]*domain.Event
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{byTitle: make(map[string]*domain.Event)}
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	if _, ok := f.byTitle[e.Title]; ok {
		return domain.ErrConflict
	}
	f.byTitle[e.Title] = e
	return nil
}

func (f *fakeEventRepo) GetByTitle(ctx context.Context, title string) (*domain.Event, error) {
	if e, ok := f.byTitle[title]; ok {
		return e, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) List(ctx context.Context, params domain.PaginationParams) ([]*domain.Event, int, error) {
	out := make([]*domain.Event, 0, len(f.byTitle))
	for _, e := range f.byTitle {
		out = append(out, e)
	}
	return out, len(out), nil
}

func (f *fakeEventRepo) Replace(ctx context.Context, e *domain.Event) error {
	old, ok := f.byTitle[e.Title]
	if !ok {
		return domain.ErrNotFound
	}
	e.CreatedAt = old.CreatedAt
	f.byTitle[e.Title] = e
	return nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, title string) error {
	if _, ok := f.byTitle[title]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byTitle, title)
	return nil
}

// fakeRequestRepo stores copies so services must persist changes explicitly.
type fakeRequestRepo struct {
	byTitle          map[string]*booking.Request
	statusWrites     int
	costStatusWrites int
	subStatusWrites  int
}

// staleRequestRepo hands every reader the same snapshot, as two concurrent readers would see it.
type staleRequestRepo struct {
	*fakeRequestRepo
	snapshot booking.Request
}

func (f *staleRequestRepo) GetByTitle(ctx context.Context, title string) (*booking.Request, error) {
	if title != f.snapshot.Title {
		return nil, domain.ErrNotFound
	}
	cp := f.snapshot
	return &cp, nil
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{byTitle: make(map[string]*booking.Request)}
}

func (f *fakeRequestRepo) Create(ctx context.Context, r *booking.Request) error {
	if _, ok := f.byTitle[r.Title]; ok {
		return domain.ErrConflict
	}
	cp := *r
	f.byTitle[r.Title] = &cp
	return nil
}

func (f *fakeRequestRepo) GetByTitle(ctx context.Context, title string) (*booking.Request, error) {
	if r, ok := f.byTitle[title]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeRequestRepo) List(ctx context.Context, params domain.PaginationParams) ([]*booking.Request, int, error) {
	out := make([]*booking.Request, 0, len(f.byTitle))
	for _, r := range f.byTitle {
		out = append(out, r)
	}
	return out, len(out), nil
}

func (f *fakeRequestRepo) ListByUserID(ctx context.Context, userID string) ([]*booking.Request, error) {
	var out []*booking.Request
	for _, r := range f.byTitle {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRequestRepo) ListByAssignee(ctx context.Context, email string) ([]*booking.Request, error) {
	var out []*booking.Request
	for _, r := range f.byTitle {
		if r.AssignedTo == email {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRequestRepo) UpdateStatus(ctx context.Context, r *booking.Request, from booking.Status) error {
	stored, ok := f.byTitle[r.Title]
	if !ok {
		return domain.ErrNotFound
	}
	if stored.Status != from {
		return &booking.TransitionError{From: stored.Status, To: r.Status}
	}
	f.statusWrites++
	stored.Status = r.Status
	stored.AssignedTo = r.AssignedTo
	return nil
}

func (f *fakeRequestRepo) UpdateCostStatus(ctx context.Context, r *booking.Request) error {
	stored, ok := f.byTitle[r.Title]
	if !ok {
		return domain.ErrNotFound
	}
	f.costStatusWrites++
	stored.CostStatus = r.CostStatus
	return nil
}

func (f *fakeRequestRepo) UpdateSubStatus(ctx context.Context, title string, task booking.SubTask, status booking.SubStatus) error {
	stored, ok := f.byTitle[title]
	if !ok {
		return domain.ErrNotFound
	}
	f.subStatusWrites++
	cp := *stored
	if err := booking.SetSubStatus(&cp, task, status == booking.SubStatusCompleted); err != nil {
		return err
	}
	stored.Progress = cp.Progress
	return nil
}

// fakePaymentRepo implements domain.PaymentRepository for tests.
type fakePaymentRepo struct {
	byID []*domain.Payment
}

func (f *fakePaymentRepo) Create(ctx context.Context, p *domain.Payment) error {
	for _, existing := range f.byID {
		if existing.RequestTitle == p.RequestTitle && existing.UserID == p.UserID && existing.Kind == p.Kind {
			return domain.ErrConflict
		}
	}
	f.byID = append(f.byID, p)
	return nil
}

func (f *fakePaymentRepo) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	for _, p := range f.byID {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakePaymentRepo) FindByRequest(ctx context.Context, requestTitle, userID string, kind domain.PaymentKind) (*domain.Payment, error) {
	for _, p := range f.byID {
		if p.RequestTitle == requestTitle && p.UserID == userID && p.Kind == kind {
			return p, nil
		}
	}
	return nil, domain.ErrNotFound
}

// fakeEmailService records what would have been sent.
type fakeEmailService struct {
	invites  []*domain.EmployeeInviteEmailData
	statuses []*domain.RequestStatusEmailData
	err      error
}

func (f *fakeEmailService) SendEmployeeInvite(ctx context.Context, data *domain.EmployeeInviteEmailData) error {
	if f.err != nil {
		return f.err
	}
	f.invites = append(f.invites, data)
	return nil
}

func (f *fakeEmailService) SendRequestStatus(ctx context.Context, data *domain.RequestStatusEmailData) error {
	if f.err != nil {
		return f.err
	}
	f.statuses = append(f.statuses, data)
	return nil
}

type published struct {
	topic   string
	payload []byte
}

// fakeFeed records publishes.
type fakeFeed struct {
	mu   sync.Mutex
	msgs []published
}

func (f *fakeFeed) Publish(ctx context.Context, topic string, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, published{topic: topic, payload: payload})
	return nil
}

func (f *fakeFeed) Subscribe(topic string) (<-chan []byte, func()) {
	ch := make(chan []byte)
	return ch, func() {}
}

func (f *fakeFeed) topics() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.msgs))
	for i, m := range f.msgs {
		out[i] = m.topic
	}
	return out
}
