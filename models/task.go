package models

import "time"

const (
	TaskStatusPending   = "pending"
	TaskStatusCompleted = "completed"
)

type Task struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	TaskLink    string     `gorm:"size:512;not null" json:"task_link"`
	Description string     `gorm:"type:text;not null" json:"description"`
	Price       float64    `gorm:"type:decimal(20,8);not null" json:"price"`
	CryptoType  CryptoType `gorm:"type:varchar(10);not null" json:"crypto_type"`
	Status      string     `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"-"`
}

func (Task) TableName() string {
	return "tasks"
}

const (
	SubmissionStatusPending  = "pending"
	SubmissionStatusApproved = "approved"
	SubmissionStatusRejected = "rejected"
)

// TaskSubmission records a user's claim that a task was completed. The reward
// is credited only when an admin approves the submission.
type TaskSubmission struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	TaskID        uint       `gorm:"not null;index:idx_task_user,unique" json:"task_id"`
	UserID        uint       `gorm:"not null;index:idx_task_user,unique" json:"user_id"`
	Proof         string     `gorm:"type:text;not null" json:"proof"`
	ScreenshotURL *string    `gorm:"size:512" json:"screenshot_url,omitempty"`
	Status        string     `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	ReviewedAt    *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"-"`
}

func (TaskSubmission) TableName() string {
	return "task_submissions"
}
