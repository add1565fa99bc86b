package chat

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionSubmit(t *testing.T) {
	mock := NewMock("Olá! Como posso ajudar?")
	s := NewSession(mock, nil)

	var got []string
	s.OnResponse(func(reply string) { got = append(got, reply) })

	reply, err := s.Submit(context.Background(), "  oi robô  ")
	require.NoError(t, err)
	assert.Equal(t, "Olá! Como posso ajudar?", reply)
	assert.Equal(t, []string{"oi robô"}, mock.Messages())
	assert.Equal(t, []string{reply}, got)

	snap := s.Snapshot()
	require.Len(t, snap.Messages, 2)
	assert.Equal(t, RoleUser, snap.Messages[0].Role)
	assert.Equal(t, "oi robô", snap.Messages[0].Text)
	assert.Equal(t, RoleRobot, snap.Messages[1].Role)
	assert.NotEqual(t, snap.Messages[0].ID, snap.Messages[1].ID)
	assert.False(t, snap.Loading)
	assert.Empty(t, snap.Error)
}

func TestSessionBlankInputMakesNoCall(t *testing.T) {
	mock := NewMock("x")
	s := NewSession(mock, nil)

	_, err := s.Submit(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.Zero(t, mock.Calls())
	assert.Empty(t, s.Snapshot().Messages)
}

func TestSessionRecordsFailures(t *testing.T) {
	s := NewSession(WithError(&APIError{StatusCode: 401}), nil)
	called := false
	s.OnResponse(func(string) { called = true })

	_, err := s.Submit(context.Background(), "oi")
	require.Error(t, err)
	assert.False(t, called)

	snap := s.Snapshot()
	assert.Equal(t, "Error processing message: API key is invalid or expired", snap.Error)
	require.Len(t, snap.Messages, 2)
	assert.Equal(t, RoleSystem, snap.Messages[1].Role)
	assert.Equal(t, ApologyMessage, snap.Messages[1].Text)
}

func TestSessionEmptyReplyIsError(t *testing.T) {
	s := NewSession(NewMock("  "), nil)

	_, err := s.Submit(context.Background(), "oi")
	assert.ErrorIs(t, err, ErrEmptyResponse)
	assert.Equal(t, "Error processing message: Empty response from service", s.Snapshot().Error)
}

func TestSessionRejectsConcurrentSubmit(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	mock := &Mock{RespondFunc: func(ctx context.Context, message string) (string, error) {
		close(entered)
		<-release
		return "ok", nil
	}}
	s := NewSession(mock, nil)

	done := make(chan error, 1)
	go func() {
		_, err := s.Submit(context.Background(), "primeira")
		done <- err
	}()
	<-entered
	assert.True(t, s.Snapshot().Loading)

	_, err := s.Submit(context.Background(), "segunda")
	assert.ErrorIs(t, err, ErrBusy)

	close(release)
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("first submit did not finish")
	}
	assert.Equal(t, 1, mock.Calls())
}

func TestSessionClearsErrorOnNextSubmit(t *testing.T) {
	mock := WithError(&APIError{StatusCode: 500})
	s := NewSession(mock, nil)
	s.Submit(context.Background(), "um")
	require.NotEmpty(t, s.Snapshot().Error)

	mock.RespondFunc = func(ctx context.Context, message string) (string, error) { return "dois", nil }
	_, err := s.Submit(context.Background(), "dois")
	require.NoError(t, err)
	assert.Empty(t, s.Snapshot().Error)
	assert.Len(t, s.Tail(2), 2)
	assert.Len(t, s.Tail(0), 4)
}
