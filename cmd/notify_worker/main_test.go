package main

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oksasatya/classroom-tasks/pkg/helpers"
	"github.com/oksasatya/classroom-tasks/pkg/mailer"
)

type stubNotifier struct {
	err  error
	seen []mailer.TaskEvent
}

func (s *stubNotifier) Notify(_ context.Context, ev mailer.TaskEvent) error {
	s.seen = append(s.seen, ev)
	return s.err
}

func TestHandle(t *testing.T) {
	logger := helpers.NewDiscardLogger()
	body := []byte(`{"type":"task_created","taskId":"t1","title":"HW1","teacherEmail":"a@school.test"}`)

	n := &stubNotifier{}
	assert.Equal(t, ack, handle(context.Background(), n, body, false, logger))
	if assert.Len(t, n.seen, 1) {
		assert.Equal(t, "t1", n.seen[0].TaskID)
		assert.Equal(t, "a@school.test", n.seen[0].TeacherEmail)
	}

	assert.Equal(t, drop, handle(context.Background(), n, []byte("{"), false, logger))

	n = &stubNotifier{err: mailer.ErrNoRecipient}
	assert.Equal(t, ack, handle(context.Background(), n, body, false, logger))

	n = &stubNotifier{err: errors.New("mailgun down")}
	assert.Equal(t, retry, handle(context.Background(), n, body, false, logger))
	assert.Equal(t, drop, handle(context.Background(), n, body, true, logger))
}
