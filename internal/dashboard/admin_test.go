package dashboard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnimplementedAdminActions(t *testing.T) {
	ctx := context.Background()
	stub := UnimplementedAdminActions{}

	assert.ErrorIs(t, stub.ToggleSpace(ctx, 3), ErrNotImplemented)
	assert.ErrorIs(t, stub.PromoteUser(ctx, "ana"), ErrNotImplemented)
	assert.ErrorIs(t, stub.DeleteUser(ctx, "ana"), ErrNotImplemented)
}

func TestAdminConsoleSurfacesNotImplemented(t *testing.T) {
	var messages []string
	notifier := NotifierFunc(func(msg string) { messages = append(messages, msg) })
	console := NewAdminConsole(UnimplementedAdminActions{}, notifier)

	ctx := context.Background()
	console.ToggleSpace(ctx, 7)
	console.PromoteUser(ctx, "ana")
	console.DeleteUser(ctx, "bo")

	require.Len(t, messages, 3)
	assert.Contains(t, messages[0], "toggle space 7")
	assert.Contains(t, messages[0], "not implemented")
	assert.Contains(t, messages[1], "promote user ana")
	assert.Contains(t, messages[2], "delete user bo")
	for _, msg := range messages {
		assert.Contains(t, msg, "not implemented")
	}
}

func TestAdminConsoleStaysQuietOnSuccess(t *testing.T) {
	var messages []string
	console := NewAdminConsole(okAdmin{}, NotifierFunc(func(msg string) { messages = append(messages, msg) }))

	console.ToggleSpace(context.Background(), 1)
	assert.Empty(t, messages)
}

type okAdmin struct{}

func (okAdmin) ToggleSpace(ctx context.Context, spaceID int) error     { return nil }
func (okAdmin) PromoteUser(ctx context.Context, username string) error { return nil }
func (okAdmin) DeleteUser(ctx context.Context, username string) error  { return nil }
