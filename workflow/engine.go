package workflow

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/assyifaul/portfolio-backend/database"
	"github.com/assyifaul/portfolio-backend/errs"
	"github.com/assyifaul/portfolio-backend/models"
)

// RequestStore is the persistence surface the engine needs for download
// requests. Approve and Reject must be conditional on the row still being
// pending: they report false, not an error, when the guard did not match.
// Approve must also apply the project counter increment atomically with the
// status flip.
type RequestStore interface {
	Add(request *models.DownloadRequest) error
	FindByID(id uuid.UUID) (*models.DownloadRequest, error)
	Find(filter database.DownloadFilter) ([]*models.DownloadRequest, error)
	Approve(id, projectID uuid.UUID) (bool, error)
	Reject(id uuid.UUID) (bool, error)
	Delete(id uuid.UUID) (bool, error)
}

// ProjectStore resolves project references for request creation and
// fulfillment.
type ProjectStore interface {
	FindByID(id uuid.UUID) (*models.Project, error)
}

// ArchiveResolver turns a stored archive key into a locator the caller can
// download from. The engine treats the locator as opaque.
type ArchiveResolver interface {
	Resolve(ctx context.Context, key string) (string, error)
}

// Notifier is pinged when a new request lands. Failures are logged, never
// surfaced; notification is best-effort.
type Notifier interface {
	NewRequest(requesterName, projectTitle string) error
}

// Engine owns the download request lifecycle: creation, the single
// pending-to-terminal transition, deletion, and fulfillment. All
// authorization happens here, not in the handlers.
type Engine struct {
	requests    RequestStore
	projects    ProjectStore
	archives    ArchiveResolver
	notifier    Notifier
	logger      zerolog.Logger
	maxAttempts int
}

func WithNotifier(n Notifier) func(*Engine) {
	return func(e *Engine) {
		e.notifier = n
	}
}

func WithMaxAttempts(attempts int) func(*Engine) {
	return func(e *Engine) {
		if attempts > 0 {
			e.maxAttempts = attempts
		}
	}
}

func NewEngine(requests RequestStore, projects ProjectStore, archives ArchiveResolver, opts ...func(*Engine)) *Engine {
	engine := &Engine{
		requests:    requests,
		projects:    projects,
		archives:    archives,
		logger:      log.With().Str("component", "downloadWorkflow").Logger(),
		maxAttempts: 3,
	}
	for _, opt := range opts {
		opt(engine)
	}
	return engine
}

// CreateRequest opens a new pending request from actor for the given
// project. No de-duplication: a user may hold any number of pending
// requests for the same project. The project counter is untouched here;
// it only moves at approval.
func (e *Engine) CreateRequest(actor Actor, projectID uuid.UUID) (*models.DownloadRequest, error) {
	if !actor.Authenticated() {
		return nil, errs.NewUnauthorizedError("sign in to request a download")
	}

	project, err := e.projects.FindByID(projectID)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "project", err)
	}
	if project == nil {
		return nil, errs.NewNotFound("project")
	}

	request := &models.DownloadRequest{
		ID:        uuid.New(),
		UserID:    actor.ID,
		ProjectID: projectID,
		Status:    models.StatusPending,
	}
	if err := e.requests.Add(request); err != nil {
		return nil, errs.NewDatabaseError("create", "download request", err)
	}

	if e.notifier != nil {
		if err := e.notifier.NewRequest(actor.ID.String(), project.Title); err != nil {
			e.logger.Warn().Err(err).Str("projectID", projectID.String()).Msg("new-request notification failed")
		}
	}

	return request, nil
}

// ListRequests returns requests visible to the actor. Non-admin callers are
// clamped to their own requests no matter what the filter says. Rows come
// back in store order unless the filter asks for chronological order.
func (e *Engine) ListRequests(actor Actor, filter database.DownloadFilter) ([]*models.DownloadRequest, error) {
	if !actor.Authenticated() {
		return nil, errs.NewUnauthorizedError("sign in to view download requests")
	}
	if !actor.Admin() {
		id := actor.ID
		filter.UserID = &id
	}

	requests, err := e.requests.Find(filter)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "download requests", err)
	}
	return requests, nil
}

// GetRequest returns a single request. Non-admin callers only see their own;
// anyone else's request is reported as missing, not forbidden.
func (e *Engine) GetRequest(actor Actor, requestID uuid.UUID) (*models.DownloadRequest, error) {
	if !actor.Authenticated() {
		return nil, errs.NewUnauthorizedError("sign in to view download requests")
	}

	request, err := e.requests.FindByID(requestID)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "download request", err)
	}
	if request == nil || (!actor.Admin() && request.UserID != actor.ID) {
		return nil, errs.NewNotFound("download request")
	}
	return request, nil
}

// Transition moves a pending request to approved or rejected. Admin only.
// The store-level guard decides races: of N concurrent transitions exactly
// one applies, the rest surface an invalid-transition error. Approval bumps
// the project counter exactly once, atomically with the status flip.
func (e *Engine) Transition(actor Actor, requestID uuid.UUID, next models.RequestStatus) (*models.DownloadRequest, error) {
	if !actor.Authenticated() {
		return nil, errs.NewUnauthorizedError("sign in to manage download requests")
	}
	if !actor.Admin() {
		return nil, errs.NewForbiddenError("only the site owner can manage download requests")
	}
	if next != models.StatusApproved && next != models.StatusRejected {
		return nil, errs.NewBadRequestError("status must be 'approved' or 'rejected'")
	}

	request, err := e.requests.FindByID(requestID)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "download request", err)
	}
	if request == nil {
		return nil, errs.NewNotFound("download request")
	}
	if request.Status.Terminal() {
		return nil, errs.NewInvalidStateTransitionError(string(request.Status), string(next))
	}

	if next == models.StatusApproved {
		err = e.approveWithRetry(request)
	} else {
		err = e.reject(request, next)
	}
	if err != nil {
		return nil, err
	}

	updated, err := e.requests.FindByID(requestID)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "download request", err)
	}
	if updated == nil {
		return nil, errs.NewNotFound("download request")
	}
	return updated, nil
}

// approveWithRetry runs the conditional approve commit, retrying only on
// transient store failures. A failed attempt has unknown outcome, so the
// current status is re-read before every retry; if the earlier attempt did
// commit, the re-read sees the terminal state and the retry is skipped
// rather than incrementing the counter a second time.
func (e *Engine) approveWithRetry(request *models.DownloadRequest) error {
	var lastErr error
	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		applied, err := e.requests.Approve(request.ID, request.ProjectID)
		if err == nil {
			if applied {
				return nil
			}
			return e.lostTransitionError(request.ID, models.StatusApproved)
		}
		if !errs.IsTransientStore(err) {
			return err
		}
		lastErr = err

		current, ferr := e.requests.FindByID(request.ID)
		if ferr != nil {
			return errs.NewDatabaseError("find", "download request", ferr)
		}
		if current == nil {
			return errs.NewNotFound("download request")
		}
		if current.Status == models.StatusApproved {
			// the ambiguous attempt committed after all
			return nil
		}
		if current.Status.Terminal() {
			return errs.NewInvalidStateTransitionError(string(current.Status), string(models.StatusApproved))
		}

		e.logger.Warn().
			Err(err).
			Int("attempt", attempt).
			Str("requestID", request.ID.String()).
			Msg("transient failure approving download request, retrying")
	}
	return lastErr
}

func (e *Engine) reject(request *models.DownloadRequest, next models.RequestStatus) error {
	applied, err := e.requests.Reject(request.ID)
	if err != nil {
		return errs.NewDatabaseError("update", "download request", err)
	}
	if !applied {
		return e.lostTransitionError(request.ID, next)
	}
	return nil
}

// lostTransitionError explains a guard miss: either the row is gone or a
// concurrent transition won.
func (e *Engine) lostTransitionError(requestID uuid.UUID, next models.RequestStatus) error {
	current, err := e.requests.FindByID(requestID)
	if err != nil {
		return errs.NewDatabaseError("find", "download request", err)
	}
	if current == nil {
		return errs.NewNotFound("download request")
	}
	return errs.NewInvalidStateTransitionError(string(current.Status), string(next))
}

// DeleteRequest hard-deletes a request regardless of status. Admin only.
// Counters are never decremented by deletion: they record approvals
// granted, not rows alive.
func (e *Engine) DeleteRequest(actor Actor, requestID uuid.UUID) error {
	if !actor.Authenticated() {
		return errs.NewUnauthorizedError("sign in to manage download requests")
	}
	if !actor.Admin() {
		return errs.NewForbiddenError("only the site owner can delete download requests")
	}

	deleted, err := e.requests.Delete(requestID)
	if err != nil {
		return errs.NewDatabaseError("delete", "download request", err)
	}
	if !deleted {
		return errs.NewNotFound("download request")
	}
	return nil
}

// Fulfill hands the owner of an approved request a locator for the project
// archive. Read-only: repeated fulfillment never moves the counter, which
// already moved once at approval. Requests owned by someone else are
// reported as missing, admins included.
func (e *Engine) Fulfill(ctx context.Context, actor Actor, requestID uuid.UUID) (string, error) {
	if !actor.Authenticated() {
		return "", errs.NewUnauthorizedError("sign in to download")
	}

	request, err := e.requests.FindByID(requestID)
	if err != nil {
		return "", errs.NewDatabaseError("find", "download request", err)
	}
	if request == nil || request.UserID != actor.ID {
		return "", errs.NewNotFound("download request")
	}

	switch request.Status {
	case models.StatusPending:
		return "", errs.NewNotReadyError()
	case models.StatusRejected:
		return "", errs.NewDeniedError()
	}

	project := request.Project
	if project == nil {
		project, err = e.projects.FindByID(request.ProjectID)
		if err != nil {
			return "", errs.NewDatabaseError("find", "project", err)
		}
		if project == nil {
			return "", errs.NewNotFound("project")
		}
	}

	locator, err := e.archives.Resolve(ctx, project.FileKey)
	if err != nil {
		return "", errs.NewInternalErrorWithCause("could not resolve project archive", err)
	}
	return locator, nil
}
