package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/nfcgate-console/internal/client/models"
	"github.com/dmitrijs2005/nfcgate-console/internal/logging"
)

// AdminAPI is the backend's administrator CRUD surface.
type AdminAPI interface {
	ListAdmins(ctx context.Context) ([]models.AdminAccount, error)
	CreateAdmin(ctx context.Context, username string, password []byte) (*models.AdminAccount, error)
	UpdateAdmin(ctx context.Context, id int64, password []byte, disabled *bool) (*models.AdminAccount, error)
	DeleteAdmin(ctx context.Context, id int64) error
}

// AdminRoster manages the administrator list. Safety rules are checked
// locally before anything is sent; every successful mutation reloads the
// whole list from the backend.
type AdminRoster struct {
	api         AdminAPI
	currentUser func() string
	log         logging.Logger

	list   Panel[[]models.AdminAccount]
	action Panel[string]

	mu     sync.Mutex
	loaded []models.AdminAccount
}

// NewAdminRoster returns a roster. currentUser reports the signed-in
// username, which may never be disabled or deleted.
func NewAdminRoster(api AdminAPI, currentUser func() string, log logging.Logger) *AdminRoster {
	if log == nil {
		log = logging.Discard()
	}
	return &AdminRoster{api: api, currentUser: currentUser, log: log.With("component", "admins")}
}

// ListResult is the roster slot.
func (r *AdminRoster) ListResult() models.OperationResult[[]models.AdminAccount] {
	return r.list.Snapshot()
}

// ActionResult is the slot of the latest create, update or delete.
func (r *AdminRoster) ActionResult() models.OperationResult[string] {
	return r.action.Snapshot()
}

// Accounts returns the loaded roster.
func (r *AdminRoster) Accounts() []models.AdminAccount {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.AdminAccount(nil), r.loaded...)
}

// Lookup finds id in the loaded roster.
func (r *AdminRoster) Lookup(id int64) (models.AdminAccount, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.loaded {
		if a.ID == id {
			return a, true
		}
	}
	return models.AdminAccount{}, false
}

// List reloads the roster, replacing whatever was loaded before.
func (r *AdminRoster) List(ctx context.Context) error {
	seq := r.list.begin("Loading administrators…")

	accounts, err := r.api.ListAdmins(ctx)
	if err != nil {
		r.list.fail(seq, err)
		return fmt.Errorf("list admins: %w", err)
	}

	if r.list.finish(seq, accounts, fmt.Sprintf("%d administrators", len(accounts))) {
		r.mu.Lock()
		r.loaded = accounts
		r.mu.Unlock()
	}
	return nil
}

// Create adds an administrator.
func (r *AdminRoster) Create(ctx context.Context, username string, password []byte) error {
	seq := r.action.begin("Creating administrator…")

	username = strings.TrimSpace(username)
	if username == "" || len(password) == 0 {
		return r.rejectAction(seq, "username and password are required")
	}

	if _, err := r.api.CreateAdmin(ctx, username, password); err != nil {
		r.action.fail(seq, err)
		return fmt.Errorf("create admin: %w", err)
	}
	r.log.Info(ctx, "admin created", "username", username)
	return r.completeAction(ctx, seq, "Created "+username)
}

// Update applies edit to its target.
func (r *AdminRoster) Update(ctx context.Context, edit models.PendingEdit) error {
	seq := r.action.begin("Updating administrator…")

	target, err := r.target(edit.TargetID)
	if err != nil {
		r.action.reject(seq, err.Error())
		return err
	}
	if edit.Password == nil && edit.Disabled == nil {
		return r.rejectAction(seq, "nothing to update, give a password or a disabled flag")
	}
	if edit.Password != nil && len(edit.Password) == 0 {
		return r.rejectAction(seq, "password must not be empty")
	}
	if edit.Disabled != nil && *edit.Disabled && r.isSelf(target) {
		err := fmt.Errorf("%w: you cannot disable your own account", ErrSelfTarget)
		r.action.reject(seq, err.Error())
		return err
	}

	if _, err := r.api.UpdateAdmin(ctx, target.ID, edit.Password, edit.Disabled); err != nil {
		r.action.fail(seq, err)
		return fmt.Errorf("update admin: %w", err)
	}
	r.log.Info(ctx, "admin updated", "id", target.ID, "password_changed", edit.Password != nil)
	return r.completeAction(ctx, seq, "Updated "+target.Username)
}

// Delete removes the target once the typed confirmation matches its
// username exactly.
func (r *AdminRoster) Delete(ctx context.Context, del models.PendingDelete) error {
	seq := r.action.begin("Deleting administrator…")

	target, err := r.target(del.TargetID)
	if err != nil {
		r.action.reject(seq, err.Error())
		return err
	}
	if r.isSelf(target) {
		err := fmt.Errorf("%w: you cannot delete your own account", ErrSelfTarget)
		r.action.reject(seq, err.Error())
		return err
	}
	if del.TypedUsername != target.Username {
		err := fmt.Errorf("%w: type %q to confirm", ErrConfirmationMismatch, target.Username)
		r.action.reject(seq, err.Error())
		return err
	}

	if err := r.api.DeleteAdmin(ctx, target.ID); err != nil {
		r.action.fail(seq, err)
		return fmt.Errorf("delete admin: %w", err)
	}
	r.log.Info(ctx, "admin deleted", "id", target.ID, "username", target.Username)
	return r.completeAction(ctx, seq, "Deleted "+target.Username)
}

func (r *AdminRoster) target(id int64) (models.AdminAccount, error) {
	a, ok := r.Lookup(id)
	if !ok {
		return models.AdminAccount{}, fmt.Errorf("%w: id %d", ErrUnknownTarget, id)
	}
	return a, nil
}

func (r *AdminRoster) isSelf(a models.AdminAccount) bool {
	if r.currentUser == nil {
		return false
	}
	return a.Username == r.currentUser()
}

func (r *AdminRoster) rejectAction(seq uint64, msg string) error {
	r.action.reject(seq, msg)
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}

// completeAction reloads the roster after a mutation. A failed reload is
// reported on the list slot; the mutation itself still succeeded.
func (r *AdminRoster) completeAction(ctx context.Context, seq uint64, status string) error {
	r.action.finish(seq, status, status)
	if err := r.List(ctx); err != nil {
		r.log.Warn(ctx, "roster reload failed", "error", err)
	}
	return nil
}
