package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/chatgpt805/crypto-click-earn/database"
	"github.com/chatgpt805/crypto-click-earn/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestLedger(t *testing.T) (*Ledger, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return NewLedger(db), db
}

func createUser(t *testing.T, db *gorm.DB, email string, isAdmin bool) *models.User {
	t.Helper()
	user := models.User{Email: email, Password: "secret123", IsAdmin: isAdmin}
	if err := user.HashPassword(); err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", email, err)
	}
	return &user
}

func setBalance(t *testing.T, db *gorm.DB, userID uint, ct models.CryptoType, v float64) {
	t.Helper()
	column, err := models.BalanceColumn(ct)
	if err != nil {
		t.Fatalf("bad crypto type: %v", err)
	}
	if err := db.Model(&models.User{}).Where("id = ?", userID).Update(column, v).Error; err != nil {
		t.Fatalf("failed to set balance: %v", err)
	}
}

func balance(t *testing.T, db *gorm.DB, userID uint, ct models.CryptoType) float64 {
	t.Helper()
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		t.Fatalf("failed to load user: %v", err)
	}
	return user.BalanceFor(ct)
}

func TestApproveWithdrawalDebitsBalance(t *testing.T) {
	ledger, db := newTestLedger(t)
	admin := createUser(t, db, "admin@example.com", true)
	user := createUser(t, db, "user@example.com", false)
	setBalance(t, db, user.ID, models.CryptoPepe, 0.0025)

	wd, err := ledger.CreateWithdrawal(user.ID, WithdrawalSpec{
		Amount:         0.002,
		CryptoType:     "pepe",
		FaucetpayEmail: "payout@example.com",
		TaskProof:      "done all tasks",
	})
	if err != nil {
		t.Fatalf("CreateWithdrawal failed: %v", err)
	}
	if wd.Status != models.WithdrawalStatusPending {
		t.Fatalf("expected pending status, got %s", wd.Status)
	}
	// nothing debited at request time
	if got := balance(t, db, user.ID, models.CryptoPepe); got != 0.0025 {
		t.Fatalf("balance changed at request time: %v", got)
	}

	if err := ledger.SetWithdrawalStatus(admin.ID, wd.ID, models.WithdrawalStatusApproved); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if got := balance(t, db, user.ID, models.CryptoPepe); got != 0.0005 {
		t.Fatalf("expected balance 0.0005 after approval, got %v", got)
	}

	var stored models.Withdrawal
	if err := db.First(&stored, wd.ID).Error; err != nil {
		t.Fatalf("failed to reload withdrawal: %v", err)
	}
	if stored.Status != models.WithdrawalStatusApproved {
		t.Fatalf("expected approved status, got %s", stored.Status)
	}

	var entry models.LedgerEntry
	if err := db.Where("order_id = ?", wd.OrderID).First(&entry).Error; err != nil {
		t.Fatalf("expected a ledger entry for the debit: %v", err)
	}
	if entry.Flow != models.FlowDebit || entry.Amount != 0.002 || entry.CryptoType != models.CryptoPepe {
		t.Fatalf("unexpected ledger entry: %+v", entry)
	}

	// a second approval must be refused and leave the balance alone
	err = ledger.SetWithdrawalStatus(admin.ID, wd.ID, models.WithdrawalStatusApproved)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition on re-approve, got %v", err)
	}
	if got := balance(t, db, user.ID, models.CryptoPepe); got != 0.0005 {
		t.Fatalf("balance changed on re-approve: %v", got)
	}
}

func TestApproveWithdrawalShortfallLeavesPending(t *testing.T) {
	ledger, db := newTestLedger(t)
	admin := createUser(t, db, "admin@example.com", true)
	user := createUser(t, db, "user@example.com", false)
	setBalance(t, db, user.ID, models.CryptoLtc, 0.01)

	wd, err := ledger.CreateWithdrawal(user.ID, WithdrawalSpec{
		Amount:         0.01,
		CryptoType:     "ltc",
		FaucetpayEmail: "payout@example.com",
		TaskProof:      "proof",
	})
	if err != nil {
		t.Fatalf("CreateWithdrawal failed: %v", err)
	}

	// the balance dropped between request and approval
	setBalance(t, db, user.ID, models.CryptoLtc, 0.005)

	err = ledger.SetWithdrawalStatus(admin.ID, wd.ID, models.WithdrawalStatusApproved)
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}

	var stored models.Withdrawal
	if err := db.First(&stored, wd.ID).Error; err != nil {
		t.Fatalf("failed to reload withdrawal: %v", err)
	}
	if stored.Status != models.WithdrawalStatusPending {
		t.Fatalf("withdrawal should stay pending on shortfall, got %s", stored.Status)
	}
	if got := balance(t, db, user.ID, models.CryptoLtc); got != 0.005 {
		t.Fatalf("balance must be untouched on shortfall, got %v", got)
	}
}

func TestRejectWithdrawalLeavesBalance(t *testing.T) {
	ledger, db := newTestLedger(t)
	admin := createUser(t, db, "admin@example.com", true)
	user := createUser(t, db, "user@example.com", false)
	setBalance(t, db, user.ID, models.CryptoDash, 1.5)

	wd, err := ledger.CreateWithdrawal(user.ID, WithdrawalSpec{
		Amount:         1.0,
		CryptoType:     "dash",
		FaucetpayEmail: "payout@example.com",
		TaskProof:      "proof",
	})
	if err != nil {
		t.Fatalf("CreateWithdrawal failed: %v", err)
	}

	if err := ledger.SetWithdrawalStatus(admin.ID, wd.ID, models.WithdrawalStatusRejected); err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if got := balance(t, db, user.ID, models.CryptoDash); got != 1.5 {
		t.Fatalf("reject must not touch the balance, got %v", got)
	}

	var stored models.Withdrawal
	if err := db.First(&stored, wd.ID).Error; err != nil {
		t.Fatalf("failed to reload withdrawal: %v", err)
	}
	if stored.Status != models.WithdrawalStatusRejected {
		t.Fatalf("expected rejected status, got %s", stored.Status)
	}

	// rejected is terminal
	err = ledger.SetWithdrawalStatus(admin.ID, wd.ID, models.WithdrawalStatusApproved)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition after reject, got %v", err)
	}
}

func TestCreateWithdrawalValidation(t *testing.T) {
	ledger, db := newTestLedger(t)
	user := createUser(t, db, "user@example.com", false)
	setBalance(t, db, user.ID, models.CryptoPepe, 1.0)

	cases := []struct {
		name string
		spec WithdrawalSpec
		want error
	}{
		{"zero amount", WithdrawalSpec{Amount: 0, CryptoType: "pepe", FaucetpayEmail: "a@b.com", TaskProof: "p"}, ErrValidation},
		{"negative amount", WithdrawalSpec{Amount: -1, CryptoType: "pepe", FaucetpayEmail: "a@b.com", TaskProof: "p"}, ErrValidation},
		{"unknown crypto", WithdrawalSpec{Amount: 0.5, CryptoType: "doge", FaucetpayEmail: "a@b.com", TaskProof: "p"}, ErrValidation},
		{"missing payout email", WithdrawalSpec{Amount: 0.5, CryptoType: "pepe", TaskProof: "p"}, ErrValidation},
		{"missing proof", WithdrawalSpec{Amount: 0.5, CryptoType: "pepe", FaucetpayEmail: "a@b.com"}, ErrValidation},
		{"over balance", WithdrawalSpec{Amount: 2.0, CryptoType: "pepe", FaucetpayEmail: "a@b.com", TaskProof: "p"}, ErrInsufficientBalance},
	}
	for _, tc := range cases {
		if _, err := ledger.CreateWithdrawal(user.ID, tc.spec); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}

	// balances in other denominations do not cover a pepe withdrawal
	setBalance(t, db, user.ID, models.CryptoLtc, 100)
	if _, err := ledger.CreateWithdrawal(user.ID, WithdrawalSpec{Amount: 2.0, CryptoType: "pepe", FaucetpayEmail: "a@b.com", TaskProof: "p"}); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance across denominations, got %v", err)
	}
}

func TestSetWithdrawalStatusGuards(t *testing.T) {
	ledger, db := newTestLedger(t)
	admin := createUser(t, db, "admin@example.com", true)
	user := createUser(t, db, "user@example.com", false)
	setBalance(t, db, user.ID, models.CryptoPepe, 1.0)

	wd, err := ledger.CreateWithdrawal(user.ID, WithdrawalSpec{Amount: 0.5, CryptoType: "pepe", FaucetpayEmail: "a@b.com", TaskProof: "p"})
	if err != nil {
		t.Fatalf("CreateWithdrawal failed: %v", err)
	}

	// a non-admin may not resolve withdrawals, even their own
	if err := ledger.SetWithdrawalStatus(user.ID, wd.ID, models.WithdrawalStatusApproved); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-admin, got %v", err)
	}
	if got := balance(t, db, user.ID, models.CryptoPepe); got != 1.0 {
		t.Fatalf("balance changed on forbidden call: %v", got)
	}

	if err := ledger.SetWithdrawalStatus(admin.ID, wd.ID, "done"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown status, got %v", err)
	}
	if err := ledger.SetWithdrawalStatus(admin.ID, 9999, models.WithdrawalStatusApproved); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown withdrawal, got %v", err)
	}
}

func TestCreateTaskValidation(t *testing.T) {
	ledger, db := newTestLedger(t)
	admin := createUser(t, db, "admin@example.com", true)
	user := createUser(t, db, "user@example.com", false)

	valid := TaskSpec{TaskLink: "https://example.com/offer", Description: "visit the page", Price: 0.001, CryptoType: "pepe"}

	if _, err := ledger.CreateTask(user.ID, valid); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-admin, got %v", err)
	}

	cases := []struct {
		name string
		spec TaskSpec
	}{
		{"negative price", TaskSpec{TaskLink: "https://example.com", Description: "d", Price: -1, CryptoType: "pepe"}},
		{"zero price", TaskSpec{TaskLink: "https://example.com", Description: "d", Price: 0, CryptoType: "pepe"}},
		{"empty description", TaskSpec{TaskLink: "https://example.com", Description: "  ", Price: 1, CryptoType: "pepe"}},
		{"relative link", TaskSpec{TaskLink: "/offer", Description: "d", Price: 1, CryptoType: "pepe"}},
		{"bad scheme", TaskSpec{TaskLink: "ftp://example.com", Description: "d", Price: 1, CryptoType: "pepe"}},
		{"unknown crypto", TaskSpec{TaskLink: "https://example.com", Description: "d", Price: 1, CryptoType: "btc"}},
	}
	for _, tc := range cases {
		if _, err := ledger.CreateTask(admin.ID, tc.spec); !errors.Is(err, ErrValidation) {
			t.Fatalf("%s: expected ErrValidation, got %v", tc.name, err)
		}
	}

	task, err := ledger.CreateTask(admin.ID, valid)
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	if task.Status != models.TaskStatusPending {
		t.Fatalf("new task should be pending, got %s", task.Status)
	}

	updated, err := ledger.UpdateTask(admin.ID, task.ID, TaskSpec{TaskLink: "https://example.com/new", Description: "updated", Price: 0.002, CryptoType: "ltc"})
	if err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}
	if updated.CryptoType != models.CryptoLtc || updated.Price != 0.002 {
		t.Fatalf("unexpected updated task: %+v", updated)
	}
	if _, err := ledger.UpdateTask(admin.ID, 9999, valid); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown task, got %v", err)
	}
}

func TestSubmitCompletion(t *testing.T) {
	ledger, db := newTestLedger(t)
	admin := createUser(t, db, "admin@example.com", true)
	user := createUser(t, db, "user@example.com", false)

	task, err := ledger.CreateTask(admin.ID, TaskSpec{TaskLink: "https://example.com/offer", Description: "visit", Price: 0.0025, CryptoType: "pepe"})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	if _, err := ledger.SubmitCompletion(user.ID, task.ID, "   ", nil); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for empty proof, got %v", err)
	}
	if _, err := ledger.SubmitCompletion(user.ID, 9999, "proof", nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown task, got %v", err)
	}

	sub, err := ledger.SubmitCompletion(user.ID, task.ID, "screenshot attached", nil)
	if err != nil {
		t.Fatalf("SubmitCompletion failed: %v", err)
	}
	if sub.Status != models.SubmissionStatusPending {
		t.Fatalf("new submission should be pending, got %s", sub.Status)
	}
	// submitting never credits anything
	if got := balance(t, db, user.ID, models.CryptoPepe); got != 0 {
		t.Fatalf("balance credited at submit time: %v", got)
	}

	if _, err := ledger.SubmitCompletion(user.ID, task.ID, "again", nil); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition on duplicate submit, got %v", err)
	}
}

func TestReviewSubmissionApproveCredits(t *testing.T) {
	ledger, db := newTestLedger(t)
	admin := createUser(t, db, "admin@example.com", true)
	user := createUser(t, db, "user@example.com", false)

	task, err := ledger.CreateTask(admin.ID, TaskSpec{TaskLink: "https://example.com/offer", Description: "visit", Price: 0.0025, CryptoType: "pepe"})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	sub, err := ledger.SubmitCompletion(user.ID, task.ID, "proof", nil)
	if err != nil {
		t.Fatalf("SubmitCompletion failed: %v", err)
	}

	if err := ledger.ReviewSubmission(user.ID, sub.ID, models.SubmissionStatusApproved); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-admin review, got %v", err)
	}
	if err := ledger.ReviewSubmission(admin.ID, sub.ID, "maybe"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown decision, got %v", err)
	}

	if err := ledger.ReviewSubmission(admin.ID, sub.ID, models.SubmissionStatusApproved); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if got := balance(t, db, user.ID, models.CryptoPepe); got != 0.0025 {
		t.Fatalf("expected reward 0.0025 credited, got %v", got)
	}

	var storedTask models.Task
	if err := db.First(&storedTask, task.ID).Error; err != nil {
		t.Fatalf("failed to reload task: %v", err)
	}
	if storedTask.Status != models.TaskStatusCompleted {
		t.Fatalf("task should be completed after approval, got %s", storedTask.Status)
	}

	var entry models.LedgerEntry
	if err := db.Where("user_id = ? AND entry_type = ?", user.ID, models.EntryTypeTaskReward).First(&entry).Error; err != nil {
		t.Fatalf("expected a ledger entry for the credit: %v", err)
	}
	if entry.Flow != models.FlowCredit || entry.Amount != 0.0025 {
		t.Fatalf("unexpected ledger entry: %+v", entry)
	}

	// approval is terminal, no double credit
	if err := ledger.ReviewSubmission(admin.ID, sub.ID, models.SubmissionStatusApproved); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition on re-review, got %v", err)
	}
	if got := balance(t, db, user.ID, models.CryptoPepe); got != 0.0025 {
		t.Fatalf("double credit detected: %v", got)
	}
}

func TestReviewSubmissionReject(t *testing.T) {
	ledger, db := newTestLedger(t)
	admin := createUser(t, db, "admin@example.com", true)
	user := createUser(t, db, "user@example.com", false)

	task, err := ledger.CreateTask(admin.ID, TaskSpec{TaskLink: "https://example.com/offer", Description: "visit", Price: 1.0, CryptoType: "dash"})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	sub, err := ledger.SubmitCompletion(user.ID, task.ID, "proof", nil)
	if err != nil {
		t.Fatalf("SubmitCompletion failed: %v", err)
	}

	if err := ledger.ReviewSubmission(admin.ID, sub.ID, models.SubmissionStatusRejected); err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if got := balance(t, db, user.ID, models.CryptoDash); got != 0 {
		t.Fatalf("reject must not credit anything, got %v", got)
	}

	var storedTask models.Task
	if err := db.First(&storedTask, task.ID).Error; err != nil {
		t.Fatalf("failed to reload task: %v", err)
	}
	if storedTask.Status != models.TaskStatusPending {
		t.Fatalf("task must stay pending after reject, got %s", storedTask.Status)
	}
}

func TestRewardThenWithdrawRoundTrip(t *testing.T) {
	ledger, db := newTestLedger(t)
	admin := createUser(t, db, "admin@example.com", true)
	user := createUser(t, db, "user@example.com", false)

	task, err := ledger.CreateTask(admin.ID, TaskSpec{TaskLink: "https://example.com/offer", Description: "visit", Price: 0.0025, CryptoType: "pepe"})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	sub, err := ledger.SubmitCompletion(user.ID, task.ID, "proof", nil)
	if err != nil {
		t.Fatalf("SubmitCompletion failed: %v", err)
	}
	if err := ledger.ReviewSubmission(admin.ID, sub.ID, models.SubmissionStatusApproved); err != nil {
		t.Fatalf("approve submission failed: %v", err)
	}

	wd, err := ledger.CreateWithdrawal(user.ID, WithdrawalSpec{Amount: 0.002, CryptoType: "pepe", FaucetpayEmail: "a@b.com", TaskProof: "p"})
	if err != nil {
		t.Fatalf("CreateWithdrawal failed: %v", err)
	}
	if err := ledger.SetWithdrawalStatus(admin.ID, wd.ID, models.WithdrawalStatusApproved); err != nil {
		t.Fatalf("approve withdrawal failed: %v", err)
	}

	if got := balance(t, db, user.ID, models.CryptoPepe); got != 0.0005 {
		t.Fatalf("expected 0.0005 remaining after reward and withdrawal, got %v", got)
	}

	// exactly two ledger entries: one credit, one debit
	var entries []models.LedgerEntry
	if err := db.Where("user_id = ?", user.ID).Order("id").Find(&entries).Error; err != nil {
		t.Fatalf("failed to load ledger entries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 ledger entries, got %d", len(entries))
	}
	if entries[0].Flow != models.FlowCredit || entries[1].Flow != models.FlowDebit {
		t.Fatalf("unexpected entry flows: %s, %s", entries[0].Flow, entries[1].Flow)
	}
}
