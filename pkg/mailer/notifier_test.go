package mailer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	to, subject, text, html string
	err                     error
	calls                   int
}

func (f *fakeSender) Send(_ context.Context, to, subject, text, html string) error {
	f.calls++
	f.to, f.subject, f.text, f.html = to, subject, text, html
	return f.err
}

func TestNotifier_Notify(t *testing.T) {
	s := &fakeSender{}
	n := NewNotifier(s)

	err := n.Notify(context.Background(), TaskEvent{
		Type:         TaskCreated,
		Title:        "HW1",
		Progress:     "not-started",
		DueDate:      "2025-03-01",
		StudentEmail: "b@school.test",
		TeacherEmail: "a@school.test",
		OccurredAt:   time.Now(),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, s.calls)
	assert.Equal(t, "a@school.test", s.to)
	assert.Equal(t, `b@school.test created "HW1"`, s.subject)
	assert.Contains(t, s.text, "Due date: 2025-03-01")
	assert.Contains(t, s.html, "<strong>HW1</strong>")
}

func TestNotifier_NoRecipient(t *testing.T) {
	s := &fakeSender{}
	err := NewNotifier(s).Notify(context.Background(), TaskEvent{Type: TaskDeleted})
	assert.ErrorIs(t, err, ErrNoRecipient)
	assert.Zero(t, s.calls)
}

func TestNotifier_SendError(t *testing.T) {
	boom := errors.New("mailgun down")
	err := NewNotifier(&fakeSender{err: boom}).Notify(context.Background(), TaskEvent{TeacherEmail: "a@school.test"})
	assert.ErrorIs(t, err, boom)
}
