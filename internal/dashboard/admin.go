package dashboard

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotImplemented marks admin capabilities that have no backend yet.
var ErrNotImplemented = errors.New("not implemented")

// AdminActions is the management capability surface of the dashboard.
// The upstream endpoints for these do not exist yet, so the shipped
// implementation refuses every call with ErrNotImplemented; a future
// backend can be wired in without restructuring callers.
type AdminActions interface {
	ToggleSpace(ctx context.Context, spaceID int) error
	PromoteUser(ctx context.Context, username string) error
	DeleteUser(ctx context.Context, username string) error
}

// UnimplementedAdminActions is the stub AdminActions implementation.
type UnimplementedAdminActions struct{}

func (UnimplementedAdminActions) ToggleSpace(ctx context.Context, spaceID int) error {
	return fmt.Errorf("toggle space %d: %w", spaceID, ErrNotImplemented)
}

func (UnimplementedAdminActions) PromoteUser(ctx context.Context, username string) error {
	return fmt.Errorf("promote user %s: %w", username, ErrNotImplemented)
}

func (UnimplementedAdminActions) DeleteUser(ctx context.Context, username string) error {
	return fmt.Errorf("delete user %s: %w", username, ErrNotImplemented)
}

var _ AdminActions = UnimplementedAdminActions{}

// AdminConsole drives management actions from the terminal, surfacing every
// outcome through the notifier as an informational message.
type AdminConsole struct {
	actions  AdminActions
	notifier Notifier
}

func NewAdminConsole(actions AdminActions, notifier Notifier) *AdminConsole {
	if notifier == nil {
		notifier = NotifierFunc(func(string) {})
	}
	return &AdminConsole{actions: actions, notifier: notifier}
}

func (c *AdminConsole) ToggleSpace(ctx context.Context, spaceID int) {
	c.report(c.actions.ToggleSpace(ctx, spaceID))
}

func (c *AdminConsole) PromoteUser(ctx context.Context, username string) {
	c.report(c.actions.PromoteUser(ctx, username))
}

func (c *AdminConsole) DeleteUser(ctx context.Context, username string) {
	c.report(c.actions.DeleteUser(ctx, username))
}

func (c *AdminConsole) report(err error) {
	if err != nil {
		c.notifier.Notify(err.Error())
	}
}
