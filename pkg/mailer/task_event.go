package mailer

import "time"

// Task event types carried on the notification queue.
const (
	TaskCreated = "task_created"
	TaskUpdated = "task_updated"
	TaskDeleted = "task_deleted"
)

// TaskEvent is the JSON payload put on the RabbitMQ queue when a student's
// task changes. The worker mails it to the student's teacher.
type TaskEvent struct {
	Type         string    `json:"type"`
	TaskID       string    `json:"taskId"`
	Title        string    `json:"title"`
	Progress     string    `json:"progress"`
	DueDate      string    `json:"dueDate,omitempty"`
	StudentID    string    `json:"studentId"`
	StudentEmail string    `json:"studentEmail"`
	TeacherID    string    `json:"teacherId"`
	TeacherEmail string    `json:"teacherEmail"`
	OccurredAt   time.Time `json:"occurredAt"`
}
