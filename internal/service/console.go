package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"tradepulse/gateway/internal/models"
)

// PageSize is the fixed console page size; pagination happens over the
// already-fetched full list, never on the backend.
const PageSize = 8

var (
	ErrUsersUnavailable = errors.New("user list unavailable")
	ErrActionInFlight   = errors.New("another action is still executing")
	ErrNoPendingAction  = errors.New("no action staged")
	ErrUnknownUser      = errors.New("user not in the loaded list")
)

// AdminAPI is the slice of the backend client the console needs.
type AdminAPI interface {
	ListUsers(ctx context.Context, token string) ([]models.AdminUser, error)
	Stats(ctx context.Context, token string) (models.AdminStats, error)
	ApproveUser(ctx context.Context, token string, id int) (models.AdminUser, error)
	SetUserRole(ctx context.Context, token string, id int, role models.Role) (models.AdminUser, error)
	DeleteUser(ctx context.Context, token string, id int) error
}

// StatsSnapshots persists the last good stats read so the cards can degrade
// to a stale value instead of disappearing when the live fetch fails.
type StatsSnapshots interface {
	Save(ctx context.Context, stats models.AdminStats)
	Load(ctx context.Context) (models.AdminStats, bool)
}

type ActionKind string

const (
	ActionApprove ActionKind = "approve"
	ActionDelete  ActionKind = "delete"
	ActionPromote ActionKind = "promote"
)

func ParseActionKind(s string) (ActionKind, bool) {
	switch ActionKind(s) {
	case ActionApprove, ActionDelete, ActionPromote:
		return ActionKind(s), true
	}
	return "", false
}

// PendingAction is a captured, not-yet-executed admin intent. A console holds
// at most one; staging another replaces it.
type PendingAction struct {
	Kind          ActionKind       `json:"kind"`
	Target        models.AdminUser `json:"target"`
	ResultingRole models.Role      `json:"resultingRole,omitempty"`
}

// ActionOutcome describes a confirmed, successful mutation.
type ActionOutcome struct {
	Kind      ActionKind        `json:"kind"`
	Message   string            `json:"message"`
	Updated   *models.AdminUser `json:"updated,omitempty"`
	DeletedID int               `json:"deletedId,omitempty"`
}

// Console is the per-admin-session state behind the admin screen: the cached
// user list, the stats cards and the confirm-before-execute action slot.
//
// The cached list is never the system of record. It mutates only in direct
// response to a successful backend mutation, and only one mutation may be in
// flight at a time.
type Console struct {
	api       AdminAPI
	snapshots StatsSnapshots
	log       zerolog.Logger

	mu            sync.Mutex
	users         []models.AdminUser
	loaded        bool
	stats         *models.AdminStats
	statsDegraded bool
	pending       *PendingAction
	executing     bool
	lastSeen      time.Time
}

func NewConsole(api AdminAPI, snapshots StatsSnapshots, log zerolog.Logger) *Console {
	return &Console{
		api:       api,
		snapshots: snapshots,
		log:       log,
		lastSeen:  time.Now(),
	}
}

// Load fetches the user list and the stats concurrently; neither depends on
// the other. A users failure empties the table and is surfaced to the admin.
// A stats failure degrades silently to the last snapshot.
func (c *Console) Load(ctx context.Context, token string) error {
	var (
		wg       sync.WaitGroup
		users    []models.AdminUser
		usersErr error
		stats    models.AdminStats
		statsErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		users, usersErr = c.api.ListUsers(ctx, token)
	}()
	go func() {
		defer wg.Done()
		stats, statsErr = c.api.Stats(ctx, token)
	}()
	wg.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.touchLocked()

	if statsErr != nil {
		c.log.Warn().Err(statsErr).Msg("admin stats fetch failed, degrading")
		c.stats = nil
		c.statsDegraded = true
		if c.snapshots != nil {
			if cached, ok := c.snapshots.Load(ctx); ok {
				c.stats = &cached
			}
		}
	} else {
		c.stats = &stats
		c.statsDegraded = false
		if c.snapshots != nil {
			c.snapshots.Save(ctx, stats)
		}
	}

	if usersErr != nil {
		c.users = nil
		c.loaded = false
		return fmt.Errorf("%w: %v", ErrUsersUnavailable, usersErr)
	}

	c.users = users
	c.loaded = true
	return nil
}

// Stage captures an action for the confirmation dialog, replacing any action
// already staged. Promote toggles the target between admin and user.
func (c *Console) Stage(kind ActionKind, userID int) (PendingAction, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touchLocked()

	if c.executing {
		return PendingAction{}, ErrActionInFlight
	}

	var target *models.AdminUser
	for i := range c.users {
		if c.users[i].ID == userID {
			target = &c.users[i]
			break
		}
	}
	if target == nil {
		return PendingAction{}, ErrUnknownUser
	}

	action := PendingAction{Kind: kind, Target: *target}
	if kind == ActionPromote {
		if target.Role == models.RoleAdmin {
			action.ResultingRole = models.RoleUser
		} else {
			action.ResultingRole = models.RoleAdmin
		}
	}

	c.pending = &action
	return action, nil
}

// Cancel discards the staged action without any network call.
func (c *Console) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touchLocked()

	if !c.executing {
		c.pending = nil
	}
}

// Confirm executes the staged action: exactly one backend mutation, local
// list patched only on success, no retry on failure. A confirm while another
// execution is in flight is rejected before any network call.
func (c *Console) Confirm(ctx context.Context, token string) (ActionOutcome, error) {
	c.mu.Lock()
	c.touchLocked()
	if c.executing {
		c.mu.Unlock()
		return ActionOutcome{}, ErrActionInFlight
	}
	if c.pending == nil {
		c.mu.Unlock()
		return ActionOutcome{}, ErrNoPendingAction
	}
	action := *c.pending
	c.executing = true
	c.mu.Unlock()

	outcome, err := c.execute(ctx, token, action)

	c.mu.Lock()
	c.executing = false
	c.pending = nil
	if err == nil {
		c.applyLocked(outcome)
	}
	c.mu.Unlock()

	if err != nil {
		c.log.Warn().Err(err).
			Str("action", string(action.Kind)).
			Int("target_id", action.Target.ID).
			Msg("admin action failed")
		return ActionOutcome{}, err
	}
	return outcome, nil
}

func (c *Console) execute(ctx context.Context, token string, action PendingAction) (ActionOutcome, error) {
	switch action.Kind {
	case ActionApprove:
		updated, err := c.api.ApproveUser(ctx, token, action.Target.ID)
		if err != nil {
			return ActionOutcome{}, err
		}
		return ActionOutcome{
			Kind:    ActionApprove,
			Message: "user approved",
			Updated: &updated,
		}, nil

	case ActionPromote:
		updated, err := c.api.SetUserRole(ctx, token, action.Target.ID, action.ResultingRole)
		if err != nil {
			return ActionOutcome{}, err
		}
		message := "user demoted to user"
		if updated.Role == models.RoleAdmin {
			message = "user promoted to admin"
		}
		return ActionOutcome{
			Kind:    ActionPromote,
			Message: message,
			Updated: &updated,
		}, nil

	case ActionDelete:
		if err := c.api.DeleteUser(ctx, token, action.Target.ID); err != nil {
			return ActionOutcome{}, err
		}
		return ActionOutcome{
			Kind:      ActionDelete,
			Message:   "user removed",
			DeletedID: action.Target.ID,
		}, nil
	}
	return ActionOutcome{}, fmt.Errorf("unknown action kind %q", action.Kind)
}

// applyLocked patches the cached list after a confirmed mutation:
// replace-in-place for approve/promote, remove-by-id for delete.
func (c *Console) applyLocked(outcome ActionOutcome) {
	if outcome.Updated != nil {
		for i := range c.users {
			if c.users[i].ID == outcome.Updated.ID {
				c.users[i] = *outcome.Updated
				return
			}
		}
		return
	}
	if outcome.Kind == ActionDelete {
		kept := c.users[:0]
		for _, u := range c.users {
			if u.ID != outcome.DeletedID {
				kept = append(kept, u)
			}
		}
		c.users = kept
	}
}

// Page returns one fixed-size page of the cached list plus the page count.
// Pages are 1-based; out-of-range pages clamp.
func (c *Console) Page(n int) ([]models.AdminUser, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touchLocked()

	totalPages := (len(c.users) + PageSize - 1) / PageSize
	if totalPages < 1 {
		totalPages = 1
	}
	if n < 1 {
		n = 1
	}
	if n > totalPages {
		n = totalPages
	}

	start := (n - 1) * PageSize
	end := start + PageSize
	if start > len(c.users) {
		return nil, totalPages
	}
	if end > len(c.users) {
		end = len(c.users)
	}

	page := make([]models.AdminUser, end-start)
	copy(page, c.users[start:end])
	return page, totalPages
}

func (c *Console) Users() []models.AdminUser {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.AdminUser, len(c.users))
	copy(out, c.users)
	return out
}

// Stats returns the current cards and whether they are a degraded snapshot
// (or absent entirely) rather than a live read.
func (c *Console) Stats() (*models.AdminStats, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stats == nil {
		return nil, c.statsDegraded
	}
	stats := *c.stats
	return &stats, c.statsDegraded
}

func (c *Console) Pending() *PendingAction {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return nil
	}
	action := *c.pending
	return &action
}

func (c *Console) Executing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.executing
}

func (c *Console) touchLocked() {
	c.lastSeen = time.Now()
}

func (c *Console) idleSince() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSeen
}
