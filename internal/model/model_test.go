package model

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessages(t *testing.T) {
	t.Parallel()

	u := NewUserMessage("hola")
	a := NewAssistantMessage("buenas")

	assert.True(t, u.IsFromUser)
	assert.False(t, a.IsFromUser)
	assert.Equal(t, RoleUser, u.Role())
	assert.Equal(t, RoleAssistant, a.Role())
	assert.NotEqual(t, u.ID, a.ID)

	id, err := uuid.Parse(u.ID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
}

func TestConversationKeepsOrderAndLimit(t *testing.T) {
	t.Parallel()

	c := NewConversation(3)
	for i := 0; i < 5; i++ {
		c.Append(NewUserMessage(fmt.Sprintf("m%d", i)))
	}

	msgs := c.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, "m2", msgs[0].Text)
	assert.Equal(t, "m4", msgs[2].Text)

	last, ok := c.Last()
	require.True(t, ok)
	assert.Equal(t, "m4", last.Text)

	msgs[0].Text = "changed"
	assert.Equal(t, "m2", c.Messages()[0].Text)
}

func TestConversationClear(t *testing.T) {
	t.Parallel()

	c := NewConversation(0)
	c.Append(NewUserMessage("a"), NewAssistantMessage("b"))
	c.Clear(NewAssistantMessage("hola"))

	assert.Equal(t, 1, c.Len())
	last, _ := c.Last()
	assert.Equal(t, "hola", last.Text)

	c.Clear()
	_, ok := c.Last()
	assert.False(t, ok)
}

func TestErrorClassification(t *testing.T) {
	t.Parallel()

	cause := context.Canceled
	err := fmt.Errorf("send: %w", NewError(KindNetworkFailure, cause))

	assert.Equal(t, KindNetworkFailure, KindOf(err))
	assert.ErrorIs(t, err, ErrNetworkFailure)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrRateLimited)
	assert.True(t, IsRetryable(err))

	gen := GeneralError("server error", 503, nil)
	assert.ErrorIs(t, gen, ErrGeneral)
	assert.True(t, gen.Retryable())
	assert.Contains(t, gen.Error(), "503")

	assert.False(t, NewError(KindContentFiltered, nil).Retryable())
	assert.False(t, NewError(KindMissingCredential, nil).Retryable())
}

func TestClassifyWrapsPlainErrors(t *testing.T) {
	t.Parallel()

	assert.Nil(t, Classify(nil))

	plain := errors.New("boom")
	ce := Classify(plain)
	require.NotNil(t, ce)
	assert.Equal(t, KindGeneral, ce.Kind)
	assert.ErrorIs(t, ce, plain)

	orig := NewError(KindRateLimited, nil)
	assert.Same(t, orig, Classify(fmt.Errorf("wrap: %w", orig)))
	assert.Equal(t, KindGeneral, KindOf(plain))
}
