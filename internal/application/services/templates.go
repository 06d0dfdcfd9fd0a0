package services

import (
	"fmt"

	"github.com/taskpilot/core/internal/domain/entities"
)

const otpSubject = "OTP verification from Task Management Tool"

func otpBody(code string) string {
	return fmt.Sprintf(`<p>Your OTP is <span style="color:brown">%s</span></p>`, code)
}

func reminderSubject(task *entities.Task) string {
	return fmt.Sprintf("Task Reminder: %q Deadline Approaching", task.Title)
}

func reminderBody(task *entities.Task) string {
	priorityColor := "#7f8c8d"
	switch task.Priority {
	case entities.PriorityUrgent:
		priorityColor = "#e74c3c"
	case entities.PriorityHigh:
		priorityColor = "#e67e22"
	case entities.PriorityNormal:
		priorityColor = "#3498db"
	}

	return fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px;">
			<h2 style="color: #2c3e50;">Task Deadline Reminder</h2>
			<div style="background-color: #f5f5f5; padding: 15px; margin: 10px 0; border-radius: 5px;">
				<p><strong>Task Title:</strong> <span style="font-size: 28px">%s</span></p>
				<p><strong>Assignor:</strong> %s</p>
				<p><strong>Assignee:</strong> %s</p>
				<p><strong>Deadline:</strong> %s</p>
				<p><strong>Priority:</strong> <span style="color: %s;">%s</span></p>
				<p><strong>Current Status:</strong> %s</p>
			</div>
			<p style="color: #7f8c8d;">Please take necessary action before the deadline.</p>
			<div style="margin-top: 20px; padding-top: 20px; border-top: 1px solid #eee;">
				<p style="color: #95a5a6;">Best regards,<br>Task Management Tool</p>
			</div>
		</div>`,
		task.Title,
		task.Assignor,
		task.Assignee,
		task.Deadline.Local().Format("Jan 2, 2006 3:04 PM"),
		priorityColor,
		task.Priority,
		task.Status,
	)
}
