package mailer

import (
	"context"
	"errors"
	"fmt"

	"github.com/oksasatya/classroom-tasks/pkg/mailer/templates"
)

// ErrNoRecipient is returned for events that carry no teacher email.
var ErrNoRecipient = errors.New("task event has no teacher email")

// Notifier turns task events into teacher emails.
type Notifier struct {
	sender Sender
}

func NewNotifier(s Sender) *Notifier {
	return &Notifier{sender: s}
}

// Notify renders the task event templates and sends the result to the teacher.
func (n *Notifier) Notify(ctx context.Context, ev TaskEvent) error {
	if ev.TeacherEmail == "" {
		return ErrNoRecipient
	}
	subject, text, html, err := templates.Render(templates.TaskEvent, ev)
	if err != nil {
		return fmt.Errorf("render task event: %w", err)
	}
	if err := n.sender.Send(ctx, ev.TeacherEmail, subject, text, html); err != nil {
		return fmt.Errorf("send to %s: %w", ev.TeacherEmail, err)
	}
	return nil
}
