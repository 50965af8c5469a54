package workflow

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/assyifaul/portfolio-backend/database"
	"github.com/assyifaul/portfolio-backend/errs"
	"github.com/assyifaul/portfolio-backend/models"
)

// memStores is a shared in-memory backing for the store fakes. Approve and
// Reject apply the same conditional-update guard the real repo does, under
// a mutex, so concurrency tests exercise the race for real.
type memStores struct {
	mu       sync.Mutex
	requests map[uuid.UUID]models.DownloadRequest
	projects map[uuid.UUID]models.Project
}

func newMemStores() *memStores {
	return &memStores{
		requests: make(map[uuid.UUID]models.DownloadRequest),
		projects: make(map[uuid.UUID]models.Project),
	}
}

func (m *memStores) addProject(title string, downloads int64) uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New()
	m.projects[id] = models.Project{ID: id, Title: title, FileKey: "archives/" + title + ".zip", DownloadCount: downloads}
	return id
}

func (m *memStores) counter(projectID uuid.UUID) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.projects[projectID].DownloadCount
}

type requestStore struct {
	*memStores
}

func (s requestStore) Add(request *models.DownloadRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests[request.ID] = *request
	return nil
}

func (s requestStore) FindByID(id uuid.UUID) (*models.DownloadRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	request, ok := s.requests[id]
	if !ok {
		return nil, nil
	}
	if project, ok := s.projects[request.ProjectID]; ok {
		p := project
		request.Project = &p
	}
	return &request, nil
}

func (s requestStore) Find(filter database.DownloadFilter) ([]*models.DownloadRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.DownloadRequest
	for _, request := range s.requests {
		if filter.UserID != nil && request.UserID != *filter.UserID {
			continue
		}
		if filter.Status != nil && request.Status != *filter.Status {
			continue
		}
		r := request
		out = append(out, &r)
	}
	return out, nil
}

func (s requestStore) Approve(id, projectID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	request, ok := s.requests[id]
	if !ok || request.Status != models.StatusPending {
		return false, nil
	}
	request.Status = models.StatusApproved
	s.requests[id] = request
	project := s.projects[projectID]
	project.DownloadCount++
	s.projects[projectID] = project
	return true, nil
}

func (s requestStore) Reject(id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	request, ok := s.requests[id]
	if !ok || request.Status != models.StatusPending {
		return false, nil
	}
	request.Status = models.StatusRejected
	s.requests[id] = request
	return true, nil
}

func (s requestStore) Delete(id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.requests[id]; !ok {
		return false, nil
	}
	delete(s.requests, id)
	return true, nil
}

type projectStore struct {
	*memStores
}

func (s projectStore) FindByID(id uuid.UUID) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	project, ok := s.projects[id]
	if !ok {
		return nil, nil
	}
	return &project, nil
}

type stubResolver struct{}

func (stubResolver) Resolve(_ context.Context, key string) (string, error) {
	return "https://files.test/" + key, nil
}

// flakyRequestStore fails Approve with a transient error a configured
// number of times. When commitBeforeFailing is set, the failing attempt
// still applies, modeling a commit whose acknowledgment was lost.
type flakyRequestStore struct {
	requestStore
	mu                  sync.Mutex
	failuresLeft        int
	commitBeforeFailing bool
}

func (s *flakyRequestStore) Approve(id, projectID uuid.UUID) (bool, error) {
	s.mu.Lock()
	shouldFail := s.failuresLeft > 0
	if shouldFail {
		s.failuresLeft--
	}
	s.mu.Unlock()

	if shouldFail {
		if s.commitBeforeFailing {
			s.requestStore.Approve(id, projectID)
		}
		return false, errs.NewTransientStoreError("approve download request", errors.New("connection reset"))
	}
	return s.requestStore.Approve(id, projectID)
}

func newTestEngine(stores *memStores, opts ...func(*Engine)) *Engine {
	return NewEngine(requestStore{stores}, projectStore{stores}, stubResolver{}, opts...)
}

func apiStatus(t *testing.T, err error) int {
	t.Helper()
	var apiErr *errs.ApiErr
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *errs.ApiErr, got %T: %v", err, err)
	}
	return apiErr.StatusCode
}

func TestCreateRequestStartsPending(t *testing.T) {
	stores := newMemStores()
	projectID := stores.addProject("cli-tool", 5)
	engine := newTestEngine(stores)
	user := UserActor(uuid.New())

	request, err := engine.CreateRequest(user, projectID)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	if request.Status != models.StatusPending {
		t.Fatalf("expected status %q got %q", models.StatusPending, request.Status)
	}
	if request.UserID != user.ID || request.ProjectID != projectID {
		t.Fatalf("request references wrong user or project")
	}
	if got := stores.counter(projectID); got != 5 {
		t.Fatalf("creation must not move the counter, got %d", got)
	}
}

func TestCreateRequestFailures(t *testing.T) {
	stores := newMemStores()
	projectID := stores.addProject("cli-tool", 0)
	engine := newTestEngine(stores)

	if _, err := engine.CreateRequest(Actor{}, projectID); !errs.IsUnauthorized(err) {
		t.Fatalf("expected unauthorized for anonymous caller, got %v", err)
	}

	if _, err := engine.CreateRequest(UserActor(uuid.New()), uuid.New()); !errs.IsNotFound(err) {
		t.Fatalf("expected not found for unknown project, got %v", err)
	}
}

func TestCreateRequestAllowsDuplicates(t *testing.T) {
	stores := newMemStores()
	projectID := stores.addProject("cli-tool", 0)
	engine := newTestEngine(stores)
	user := UserActor(uuid.New())

	first, err := engine.CreateRequest(user, projectID)
	if err != nil {
		t.Fatalf("first request: %v", err)
	}
	second, err := engine.CreateRequest(user, projectID)
	if err != nil {
		t.Fatalf("second request: %v", err)
	}
	if first.ID == second.ID {
		t.Fatalf("expected two distinct requests")
	}

	requests, err := engine.ListRequests(user, database.DownloadFilter{})
	if err != nil {
		t.Fatalf("list requests: %v", err)
	}
	if len(requests) != 2 {
		t.Fatalf("expected 2 pending requests, got %d", len(requests))
	}
	for _, request := range requests {
		if request.Status != models.StatusPending {
			t.Fatalf("expected pending, got %q", request.Status)
		}
	}
}

func TestTransitionApproveIncrementsCounterOnce(t *testing.T) {
	stores := newMemStores()
	projectID := stores.addProject("cli-tool", 5)
	engine := newTestEngine(stores)
	user := UserActor(uuid.New())
	admin := AdminActor(uuid.New())

	request, err := engine.CreateRequest(user, projectID)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}

	updated, err := engine.Transition(admin, request.ID, models.StatusApproved)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if updated.Status != models.StatusApproved {
		t.Fatalf("expected approved, got %q", updated.Status)
	}
	if got := stores.counter(projectID); got != 6 {
		t.Fatalf("expected counter 6, got %d", got)
	}

	// Terminal states admit no further transition, and the counter must
	// not move again
	if _, err := engine.Transition(admin, request.ID, models.StatusApproved); !errs.IsInvalidStateTransition(err) {
		t.Fatalf("expected invalid state transition, got %v", err)
	}
	if _, err := engine.Transition(admin, request.ID, models.StatusRejected); !errs.IsInvalidStateTransition(err) {
		t.Fatalf("expected invalid state transition, got %v", err)
	}
	if got := stores.counter(projectID); got != 6 {
		t.Fatalf("expected counter to stay 6, got %d", got)
	}
}

func TestTransitionRejectHasNoCounterEffect(t *testing.T) {
	stores := newMemStores()
	projectID := stores.addProject("cli-tool", 3)
	engine := newTestEngine(stores)
	user := UserActor(uuid.New())
	admin := AdminActor(uuid.New())

	request, err := engine.CreateRequest(user, projectID)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}

	updated, err := engine.Transition(admin, request.ID, models.StatusRejected)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if updated.Status != models.StatusRejected {
		t.Fatalf("expected rejected, got %q", updated.Status)
	}
	if got := stores.counter(projectID); got != 3 {
		t.Fatalf("expected counter unchanged, got %d", got)
	}
}

func TestTransitionAuthorization(t *testing.T) {
	stores := newMemStores()
	projectID := stores.addProject("cli-tool", 0)
	engine := newTestEngine(stores)
	user := UserActor(uuid.New())
	admin := AdminActor(uuid.New())

	request, err := engine.CreateRequest(user, projectID)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}

	if _, err := engine.Transition(Actor{}, request.ID, models.StatusApproved); !errs.IsUnauthorized(err) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if _, err := engine.Transition(user, request.ID, models.StatusApproved); !errs.IsForbidden(err) {
		t.Fatalf("expected forbidden for non-admin, got %v", err)
	}
	if _, err := engine.Transition(admin, uuid.New(), models.StatusApproved); !errs.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := engine.Transition(admin, request.ID, models.StatusPending); apiStatus(t, err) != 400 {
		t.Fatalf("expected bad request for pending target, got %v", err)
	}

	// A denied caller must not have caused any state change
	current, err := engine.GetRequest(admin, request.ID)
	if err != nil {
		t.Fatalf("get request: %v", err)
	}
	if current.Status != models.StatusPending {
		t.Fatalf("expected request untouched, got %q", current.Status)
	}
}

func TestConcurrentTransitionsHaveOneWinner(t *testing.T) {
	stores := newMemStores()
	projectID := stores.addProject("cli-tool", 0)
	engine := newTestEngine(stores)
	user := UserActor(uuid.New())
	admin := AdminActor(uuid.New())

	request, err := engine.CreateRequest(user, projectID)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}

	const callers = 8
	results := make(chan error, callers)
	var start sync.WaitGroup
	start.Add(1)
	for i := 0; i < callers; i++ {
		go func() {
			start.Wait()
			_, err := engine.Transition(admin, request.ID, models.StatusApproved)
			results <- err
		}()
	}
	start.Done()

	var wins, losses int
	for i := 0; i < callers; i++ {
		err := <-results
		switch {
		case err == nil:
			wins++
		case errs.IsInvalidStateTransition(err):
			losses++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if wins != 1 {
		t.Fatalf("expected exactly one winner, got %d", wins)
	}
	if losses != callers-1 {
		t.Fatalf("expected %d losers, got %d", callers-1, losses)
	}
	if got := stores.counter(projectID); got != 1 {
		t.Fatalf("expected exactly one increment, got %d", got)
	}
}

func TestApproveRetriesTransientFailure(t *testing.T) {
	stores := newMemStores()
	projectID := stores.addProject("cli-tool", 0)
	flaky := &flakyRequestStore{requestStore: requestStore{stores}, failuresLeft: 2}
	engine := NewEngine(flaky, projectStore{stores}, stubResolver{})
	user := UserActor(uuid.New())
	admin := AdminActor(uuid.New())

	request, err := engine.CreateRequest(user, projectID)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}

	updated, err := engine.Transition(admin, request.ID, models.StatusApproved)
	if err != nil {
		t.Fatalf("approve with transient failures: %v", err)
	}
	if updated.Status != models.StatusApproved {
		t.Fatalf("expected approved, got %q", updated.Status)
	}
	if got := stores.counter(projectID); got != 1 {
		t.Fatalf("expected counter 1, got %d", got)
	}
}

func TestApproveAmbiguousOutcomeDoesNotDoubleIncrement(t *testing.T) {
	stores := newMemStores()
	projectID := stores.addProject("cli-tool", 0)
	// The first attempt commits but its acknowledgment is lost; the
	// engine must detect the committed state on re-read instead of
	// applying the increment again
	flaky := &flakyRequestStore{requestStore: requestStore{stores}, failuresLeft: 1, commitBeforeFailing: true}
	engine := NewEngine(flaky, projectStore{stores}, stubResolver{})
	user := UserActor(uuid.New())
	admin := AdminActor(uuid.New())

	request, err := engine.CreateRequest(user, projectID)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}

	updated, err := engine.Transition(admin, request.ID, models.StatusApproved)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if updated.Status != models.StatusApproved {
		t.Fatalf("expected approved, got %q", updated.Status)
	}
	if got := stores.counter(projectID); got != 1 {
		t.Fatalf("expected exactly one increment, got %d", got)
	}
}

func TestApproveEscalatesAfterBoundedRetries(t *testing.T) {
	stores := newMemStores()
	projectID := stores.addProject("cli-tool", 0)
	flaky := &flakyRequestStore{requestStore: requestStore{stores}, failuresLeft: 10}
	engine := NewEngine(flaky, projectStore{stores}, stubResolver{}, WithMaxAttempts(3))
	user := UserActor(uuid.New())
	admin := AdminActor(uuid.New())

	request, err := engine.CreateRequest(user, projectID)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}

	if _, err := engine.Transition(admin, request.ID, models.StatusApproved); !errs.IsTransientStore(err) {
		t.Fatalf("expected transient store failure after retries, got %v", err)
	}
	// Escalation must not have left partial state
	current, err := engine.GetRequest(admin, request.ID)
	if err != nil {
		t.Fatalf("get request: %v", err)
	}
	if current.Status != models.StatusPending {
		t.Fatalf("expected request still pending, got %q", current.Status)
	}
	if got := stores.counter(projectID); got != 0 {
		t.Fatalf("expected counter untouched, got %d", got)
	}
}

func TestFulfill(t *testing.T) {
	stores := newMemStores()
	projectID := stores.addProject("cli-tool", 5)
	engine := newTestEngine(stores)
	user := UserActor(uuid.New())
	admin := AdminActor(uuid.New())
	ctx := context.Background()

	request, err := engine.CreateRequest(user, projectID)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}

	if _, err := engine.Fulfill(ctx, user, request.ID); !errs.IsNotReady(err) {
		t.Fatalf("expected not ready on pending, got %v", err)
	}

	if _, err := engine.Transition(admin, request.ID, models.StatusApproved); err != nil {
		t.Fatalf("approve: %v", err)
	}

	locator, err := engine.Fulfill(ctx, user, request.ID)
	if err != nil {
		t.Fatalf("fulfill: %v", err)
	}
	if locator != "https://files.test/archives/cli-tool.zip" {
		t.Fatalf("unexpected locator %q", locator)
	}

	// Fulfillment is read-only: repeated calls never move the counter
	for i := 0; i < 3; i++ {
		if _, err := engine.Fulfill(ctx, user, request.ID); err != nil {
			t.Fatalf("repeat fulfill: %v", err)
		}
	}
	if got := stores.counter(projectID); got != 6 {
		t.Fatalf("expected counter to stay 6, got %d", got)
	}

	// Ownership is strict: other users and even admins see NotFound
	if _, err := engine.Fulfill(ctx, UserActor(uuid.New()), request.ID); !errs.IsNotFound(err) {
		t.Fatalf("expected not found for non-owner, got %v", err)
	}
	if _, err := engine.Fulfill(ctx, admin, request.ID); !errs.IsNotFound(err) {
		t.Fatalf("expected not found for admin non-owner, got %v", err)
	}
	if _, err := engine.Fulfill(ctx, Actor{}, request.ID); !errs.IsUnauthorized(err) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestFulfillRejected(t *testing.T) {
	stores := newMemStores()
	projectID := stores.addProject("cli-tool", 0)
	engine := newTestEngine(stores)
	user := UserActor(uuid.New())
	admin := AdminActor(uuid.New())

	request, err := engine.CreateRequest(user, projectID)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	if _, err := engine.Transition(admin, request.ID, models.StatusRejected); err != nil {
		t.Fatalf("reject: %v", err)
	}

	if _, err := engine.Fulfill(context.Background(), user, request.ID); !errs.IsDenied(err) {
		t.Fatalf("expected denied, got %v", err)
	}
}

func TestDeleteRequest(t *testing.T) {
	stores := newMemStores()
	projectID := stores.addProject("cli-tool", 0)
	engine := newTestEngine(stores)
	user := UserActor(uuid.New())
	admin := AdminActor(uuid.New())

	request, err := engine.CreateRequest(user, projectID)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	if _, err := engine.Transition(admin, request.ID, models.StatusApproved); err != nil {
		t.Fatalf("approve: %v", err)
	}

	if err := engine.DeleteRequest(user, request.ID); !errs.IsForbidden(err) {
		t.Fatalf("expected forbidden for non-admin, got %v", err)
	}

	if err := engine.DeleteRequest(admin, request.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	requests, err := engine.ListRequests(user, database.DownloadFilter{})
	if err != nil {
		t.Fatalf("list requests: %v", err)
	}
	if len(requests) != 0 {
		t.Fatalf("expected no requests after delete, got %d", len(requests))
	}

	// Deleting an approved request never rolls the counter back
	if got := stores.counter(projectID); got != 1 {
		t.Fatalf("expected counter to stay 1, got %d", got)
	}

	if err := engine.DeleteRequest(admin, request.ID); !errs.IsNotFound(err) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestListRequestsClampsToCaller(t *testing.T) {
	stores := newMemStores()
	projectID := stores.addProject("cli-tool", 0)
	engine := newTestEngine(stores)
	alice := UserActor(uuid.New())
	bob := UserActor(uuid.New())
	admin := AdminActor(uuid.New())

	if _, err := engine.CreateRequest(alice, projectID); err != nil {
		t.Fatalf("alice request: %v", err)
	}
	if _, err := engine.CreateRequest(bob, projectID); err != nil {
		t.Fatalf("bob request: %v", err)
	}

	// A user asking for someone else's requests still only sees their own
	requests, err := engine.ListRequests(alice, database.DownloadFilter{UserID: &bob.ID})
	if err != nil {
		t.Fatalf("list as alice: %v", err)
	}
	if len(requests) != 1 || requests[0].UserID != alice.ID {
		t.Fatalf("expected alice's single request, got %d", len(requests))
	}

	all, err := engine.ListRequests(admin, database.DownloadFilter{})
	if err != nil {
		t.Fatalf("list as admin: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected global visibility for admin, got %d", len(all))
	}

	pending := models.StatusPending
	filtered, err := engine.ListRequests(admin, database.DownloadFilter{UserID: &bob.ID, Status: &pending})
	if err != nil {
		t.Fatalf("filtered list: %v", err)
	}
	if len(filtered) != 1 || filtered[0].UserID != bob.ID {
		t.Fatalf("expected bob's request only")
	}
}

// TestRequestLifecycleScenario walks the full story: request, approval
// with one counter bump, fulfillment without further bumps, and deletion
// that leaves the counter alone.
func TestRequestLifecycleScenario(t *testing.T) {
	stores := newMemStores()
	projectID := stores.addProject("portfolio-site", 5)
	engine := newTestEngine(stores)
	user := UserActor(uuid.New())
	admin := AdminActor(uuid.New())
	ctx := context.Background()

	request, err := engine.CreateRequest(user, projectID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if request.Status != models.StatusPending {
		t.Fatalf("expected pending, got %q", request.Status)
	}

	if _, err := engine.Transition(admin, request.ID, models.StatusApproved); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if got := stores.counter(projectID); got != 6 {
		t.Fatalf("expected counter 6 after approval, got %d", got)
	}

	if _, err := engine.Fulfill(ctx, user, request.ID); err != nil {
		t.Fatalf("fulfill: %v", err)
	}
	if got := stores.counter(projectID); got != 6 {
		t.Fatalf("expected counter 6 after fulfill, got %d", got)
	}

	if err := engine.DeleteRequest(admin, request.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	requests, err := engine.ListRequests(user, database.DownloadFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(requests) != 0 {
		t.Fatalf("expected empty listing after delete")
	}
	if got := stores.counter(projectID); got != 6 {
		t.Fatalf("expected counter 6 after delete, got %d", got)
	}
}
