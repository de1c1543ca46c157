package store

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/chatgpt805/crypto-click-earn/models"
	"github.com/chatgpt805/crypto-click-earn/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Ledger is the authoritative store of users, tasks, submissions and
// withdrawals. It owns every balance mutation: rewards are credited only by
// approving a task submission, balances are debited only by approving a
// withdrawal, and both happen inside a single database transaction together
// with their audit entry.
//
// A Ledger is constructed once at startup and injected into the controllers;
// tests build their own against a throwaway database.
type Ledger struct {
	db *gorm.DB
}

func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// DB exposes the underlying handle for read-only listing queries that live in
// the controllers (pagination, search, joins). Mutations must go through the
// Ledger methods.
func (l *Ledger) DB() *gorm.DB {
	return l.db
}

// locked applies a SELECT ... FOR UPDATE clause on dialects that support it.
// SQLite (used by tests) has a single writer per transaction, so skipping the
// clause there preserves the same serialization.
func (l *Ledger) locked(tx *gorm.DB) *gorm.DB {
	if l.db.Dialector.Name() == "mysql" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

func (l *Ledger) GetUser(id uint) (*models.User, error) {
	var user models.User
	if err := l.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, id)
		}
		return nil, err
	}
	return &user, nil
}

func (l *Ledger) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := l.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %s", ErrNotFound, email)
		}
		return nil, err
	}
	return &user, nil
}

// requireAdmin loads the acting user and checks the admin flag. The check
// lives here, not in the transport layer, so no caller can reach an
// administrative mutation without it.
func (l *Ledger) requireAdmin(adminID uint) error {
	admin, err := l.GetUser(adminID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("%w: admin %d not found", ErrForbidden, adminID)
		}
		return err
	}
	if !admin.IsAdmin {
		return fmt.Errorf("%w: user %d is not an admin", ErrForbidden, adminID)
	}
	return nil
}

// Tasks returns all tasks, newest first.
func (l *Ledger) Tasks() ([]models.Task, error) {
	var tasks []models.Task
	if err := l.db.Order("id DESC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (l *Ledger) GetTask(id uint) (*models.Task, error) {
	var task models.Task
	if err := l.db.First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: task %d", ErrNotFound, id)
		}
		return nil, err
	}
	return &task, nil
}

// TaskSpec carries the admin-provided fields of a new or updated task.
type TaskSpec struct {
	TaskLink    string
	Description string
	Price       float64
	CryptoType  string
}

func (s *TaskSpec) validate() (models.CryptoType, error) {
	if strings.TrimSpace(s.Description) == "" {
		return "", fmt.Errorf("%w: description is required", ErrValidation)
	}
	if s.Price <= 0 {
		return "", fmt.Errorf("%w: price must be positive", ErrValidation)
	}
	u, err := url.Parse(strings.TrimSpace(s.TaskLink))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%w: task_link must be an absolute http(s) URL", ErrValidation)
	}
	ct, err := models.ParseCryptoType(s.CryptoType)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return ct, nil
}

// CreateTask validates the spec and inserts a pending task.
func (l *Ledger) CreateTask(adminID uint, spec TaskSpec) (*models.Task, error) {
	if err := l.requireAdmin(adminID); err != nil {
		return nil, err
	}
	ct, err := spec.validate()
	if err != nil {
		return nil, err
	}
	task := models.Task{
		TaskLink:    strings.TrimSpace(spec.TaskLink),
		Description: strings.TrimSpace(spec.Description),
		Price:       utils.RoundFloat(spec.Price, 8),
		CryptoType:  ct,
		Status:      models.TaskStatusPending,
	}
	if err := l.db.Create(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateTask rewrites the admin-editable fields of an existing task.
func (l *Ledger) UpdateTask(adminID, taskID uint, spec TaskSpec) (*models.Task, error) {
	if err := l.requireAdmin(adminID); err != nil {
		return nil, err
	}
	ct, err := spec.validate()
	if err != nil {
		return nil, err
	}
	task, err := l.GetTask(taskID)
	if err != nil {
		return nil, err
	}
	task.TaskLink = strings.TrimSpace(spec.TaskLink)
	task.Description = strings.TrimSpace(spec.Description)
	task.Price = utils.RoundFloat(spec.Price, 8)
	task.CryptoType = ct
	if err := l.db.Save(task).Error; err != nil {
		return nil, err
	}
	return task, nil
}

// SubmitCompletion records a pending completion claim for review. It never
// credits the balance; that is an administrative act (ReviewSubmission).
func (l *Ledger) SubmitCompletion(userID, taskID uint, proof string, screenshotURL *string) (*models.TaskSubmission, error) {
	if strings.TrimSpace(proof) == "" {
		return nil, fmt.Errorf("%w: proof is required", ErrValidation)
	}
	if _, err := l.GetUser(userID); err != nil {
		return nil, err
	}
	task, err := l.GetTask(taskID)
	if err != nil {
		return nil, err
	}

	var existing models.TaskSubmission
	err = l.db.Where("task_id = ? AND user_id = ?", task.ID, userID).First(&existing).Error
	if err == nil {
		return nil, fmt.Errorf("%w: task %d already submitted", ErrInvalidTransition, task.ID)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	sub := models.TaskSubmission{
		TaskID:        task.ID,
		UserID:        userID,
		Proof:         strings.TrimSpace(proof),
		ScreenshotURL: screenshotURL,
		Status:        models.SubmissionStatusPending,
	}
	if err := l.db.Create(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

// ReviewSubmission resolves a pending completion claim. Approval credits the
// task reward, flips the task to completed and writes a ledger entry, all in
// one transaction. Terminal submissions reject any further transition.
func (l *Ledger) ReviewSubmission(adminID, submissionID uint, decision string) error {
	if err := l.requireAdmin(adminID); err != nil {
		return err
	}
	if decision != models.SubmissionStatusApproved && decision != models.SubmissionStatusRejected {
		return fmt.Errorf("%w: decision must be approved or rejected", ErrValidation)
	}

	return l.db.Transaction(func(tx *gorm.DB) error {
		var sub models.TaskSubmission
		if err := l.locked(tx).First(&sub, submissionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: submission %d", ErrNotFound, submissionID)
			}
			return err
		}
		if sub.Status != models.SubmissionStatusPending {
			return fmt.Errorf("%w: submission %d is %s", ErrInvalidTransition, sub.ID, sub.Status)
		}

		now := time.Now()
		sub.Status = decision
		sub.ReviewedAt = &now
		if err := tx.Save(&sub).Error; err != nil {
			return err
		}
		if decision == models.SubmissionStatusRejected {
			return nil
		}

		var task models.Task
		if err := tx.First(&task, sub.TaskID).Error; err != nil {
			return err
		}
		var user models.User
		if err := l.locked(tx).First(&user, sub.UserID).Error; err != nil {
			return err
		}

		column, err := models.BalanceColumn(task.CryptoType)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrValidation, err)
		}
		newBalance := utils.RoundFloat(user.BalanceFor(task.CryptoType)+task.Price, 8)
		if err := tx.Model(&user).Update(column, newBalance).Error; err != nil {
			return err
		}
		if err := tx.Model(&task).Update("status", models.TaskStatusCompleted).Error; err != nil {
			return err
		}

		msg := fmt.Sprintf("Reward for task #%d", task.ID)
		entry := models.LedgerEntry{
			UserID:     user.ID,
			Amount:     task.Price,
			CryptoType: task.CryptoType,
			Flow:       models.FlowCredit,
			EntryType:  models.EntryTypeTaskReward,
			OrderID:    utils.GenerateOrderID(user.ID),
			Message:    &msg,
		}
		return tx.Create(&entry).Error
	})
}

// WithdrawalSpec carries the user-provided fields of a withdrawal request.
type WithdrawalSpec struct {
	Amount         float64
	CryptoType     string
	FaucetpayEmail string
	TaskProof      string
}

// CreateWithdrawal validates the request against the user's current balance
// and inserts a pending withdrawal. The balance is not touched here; the debit
// happens at approval time, against the balance at that moment.
func (l *Ledger) CreateWithdrawal(userID uint, spec WithdrawalSpec) (*models.Withdrawal, error) {
	if spec.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	if strings.TrimSpace(spec.FaucetpayEmail) == "" {
		return nil, fmt.Errorf("%w: faucetpay_email is required", ErrValidation)
	}
	if strings.TrimSpace(spec.TaskProof) == "" {
		return nil, fmt.Errorf("%w: task_proof is required", ErrValidation)
	}
	ct, err := models.ParseCryptoType(spec.CryptoType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	user, err := l.GetUser(userID)
	if err != nil {
		return nil, err
	}
	amount := utils.RoundFloat(spec.Amount, 8)
	if amount > user.BalanceFor(ct) {
		return nil, fmt.Errorf("%w: requested %.8f %s, have %.8f", ErrInsufficientBalance, amount, ct, user.BalanceFor(ct))
	}

	wd := models.Withdrawal{
		UserID:         userID,
		FaucetpayEmail: strings.TrimSpace(spec.FaucetpayEmail),
		TaskProof:      strings.TrimSpace(spec.TaskProof),
		Amount:         amount,
		CryptoType:     ct,
		OrderID:        utils.GenerateOrderID(userID),
		Status:         models.WithdrawalStatusPending,
	}
	if err := l.db.Create(&wd).Error; err != nil {
		return nil, err
	}
	return &wd, nil
}

// SetWithdrawalStatus resolves a pending withdrawal. Only pending requests may
// transition; when two admins race, the row lock ensures the loser observes a
// terminal status and gets ErrInvalidTransition. Approval re-checks the
// balance at this moment and debits it in the same transaction; on shortfall
// the request stays pending and ErrInsufficientBalance is returned.
func (l *Ledger) SetWithdrawalStatus(adminID, withdrawalID uint, status string) error {
	if err := l.requireAdmin(adminID); err != nil {
		return err
	}
	if status != models.WithdrawalStatusApproved && status != models.WithdrawalStatusRejected {
		return fmt.Errorf("%w: status must be approved or rejected", ErrValidation)
	}

	return l.db.Transaction(func(tx *gorm.DB) error {
		var wd models.Withdrawal
		if err := l.locked(tx).First(&wd, withdrawalID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: withdrawal %d", ErrNotFound, withdrawalID)
			}
			return err
		}
		if wd.Status != models.WithdrawalStatusPending {
			return fmt.Errorf("%w: withdrawal %d is %s", ErrInvalidTransition, wd.ID, wd.Status)
		}

		if status == models.WithdrawalStatusRejected {
			return tx.Model(&wd).Update("status", models.WithdrawalStatusRejected).Error
		}

		var user models.User
		if err := l.locked(tx).First(&user, wd.UserID).Error; err != nil {
			return err
		}
		balance := user.BalanceFor(wd.CryptoType)
		if wd.Amount > balance {
			return fmt.Errorf("%w: approving %.8f %s, have %.8f", ErrInsufficientBalance, wd.Amount, wd.CryptoType, balance)
		}

		column, err := models.BalanceColumn(wd.CryptoType)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrValidation, err)
		}
		newBalance := utils.RoundFloat(balance-wd.Amount, 8)
		if err := tx.Model(&user).Update(column, newBalance).Error; err != nil {
			return err
		}
		if err := tx.Model(&wd).Update("status", models.WithdrawalStatusApproved).Error; err != nil {
			return err
		}

		msg := fmt.Sprintf("Withdrawal to %s", wd.FaucetpayEmail)
		entry := models.LedgerEntry{
			UserID:     user.ID,
			Amount:     wd.Amount,
			CryptoType: wd.CryptoType,
			Flow:       models.FlowDebit,
			EntryType:  models.EntryTypeWithdrawal,
			OrderID:    wd.OrderID,
			Message:    &msg,
		}
		return tx.Create(&entry).Error
	})
}

// Withdrawals lists withdrawal requests, optionally filtered by user, newest
// first.
func (l *Ledger) Withdrawals(userID uint) ([]models.Withdrawal, error) {
	q := l.db.Order("id DESC")
	if userID != 0 {
		q = q.Where("user_id = ?", userID)
	}
	var out []models.Withdrawal
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Submissions lists completion claims, optionally filtered by status.
func (l *Ledger) Submissions(status string) ([]models.TaskSubmission, error) {
	q := l.db.Order("id DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var out []models.TaskSubmission
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
