package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"gagyebu/internal/core"
)

func newReportService(store *fakeStore) *ReportService {
	return NewReportService(store, store, store, testLogger())
}

func TestCreateLinkToken(t *testing.T) {
	store := newFakeStore()
	svc := newReportService(store)

	link, err := svc.CreateLink(context.Background(), uuid.New(), LinkInput{
		StartDate:       "2025-01-01",
		EndDate:         "2025-03-31",
		ExpiryDays:      30,
		ShowSummary:     true,
		DisplayCurrency: core.DisplayKRW,
	})
	if err != nil {
		t.Fatalf("CreateLink() error = %v", err)
	}

	if len(link.Token) != 64 {
		t.Errorf("token length = %d, want 64", len(link.Token))
	}
	for _, r := range link.Token {
		if !(r >= '0' && r <= '9' || r >= 'a' && r <= 'f') {
			t.Fatalf("token contains %q, want lowercase hex only", r)
		}
	}
	if link.ExpiresAt == nil {
		t.Fatal("ExpiresAt = nil, want 30 days out")
	}
	want := link.CreatedAt.AddDate(0, 0, 30)
	if !link.ExpiresAt.Equal(want) {
		t.Errorf("ExpiresAt = %v, want %v", link.ExpiresAt, want)
	}
}

func TestCreateLinkNeverExpires(t *testing.T) {
	svc := newReportService(newFakeStore())
	link, err := svc.CreateLink(context.Background(), uuid.New(), LinkInput{
		StartDate: "2025-01-01",
		EndDate:   "2025-03-31",
	})
	if err != nil {
		t.Fatalf("CreateLink() error = %v", err)
	}
	if link.ExpiresAt != nil {
		t.Errorf("ExpiresAt = %v, want nil for a permanent link", link.ExpiresAt)
	}
}

func TestCreateLinkRejectsReversedRange(t *testing.T) {
	svc := newReportService(newFakeStore())
	_, err := svc.CreateLink(context.Background(), uuid.New(), LinkInput{
		StartDate: "2025-03-31",
		EndDate:   "2025-01-01",
	})
	var validation *core.ValidationError
	if !errors.As(err, &validation) {
		t.Errorf("CreateLink() error = %v, want validation error", err)
	}
}

func TestBuildSharedDistinguishesExpiredFromUnknown(t *testing.T) {
	store := newFakeStore()
	svc := newReportService(store)
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	expiry := now.Add(-time.Hour)
	store.links["expiredtoken"] = core.SharedLink{
		Token:           "expiredtoken",
		OwnerID:         uuid.New(),
		StartDate:       mustDate("2025-01-01"),
		EndDate:         mustDate("2025-03-31"),
		ExpiresAt:       &expiry,
		DisplayCurrency: core.DisplayKRW,
	}

	if _, err := svc.BuildShared(context.Background(), "neverexisted", now); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("unknown token error = %v, want ErrNotFound", err)
	}
	if _, err := svc.BuildShared(context.Background(), "expiredtoken", now); !errors.Is(err, core.ErrLinkExpired) {
		t.Errorf("expired token error = %v, want ErrLinkExpired", err)
	}
}

func TestBuildSharedRedaction(t *testing.T) {
	store := newFakeStore()
	svc := newReportService(store)
	owner := uuid.New()
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	store.users[owner] = "하늘"
	cat := uuid.New()
	seedExpense(store, owner, &cat, "식비", "2025-02-10", "500")
	store.transactions[uuid.New()] = core.Transaction{
		ID:        uuid.New(),
		OwnerID:   owner,
		Date:      mustDate("2025-02-15"),
		Type:      core.Income,
		Currency:  core.HomeCurrency,
		KRWAmount: d("3000000"),
		TRYAmount: dp("500"),
	}

	store.links["tok"] = core.SharedLink{
		Token:            "tok",
		OwnerID:          owner,
		StartDate:        mustDate("2025-01-01"),
		EndDate:          mustDate("2025-03-31"),
		ShowIncome:       false,
		ShowSummary:      true,
		ShowStackedChart: true,
		DisplayCurrency:  core.DisplayTRY,
	}

	report, err := svc.BuildShared(context.Background(), "tok", now)
	if err != nil {
		t.Fatalf("BuildShared() error = %v", err)
	}

	if report.OwnerName != "하늘" {
		t.Errorf("OwnerName = %q", report.OwnerName)
	}
	if report.Totals == nil {
		t.Fatal("Totals = nil, want summary section")
	}
	// Hiding income redacts the list and chart, not the summary math.
	if !report.Totals.Income.Equal(d("500")) {
		t.Errorf("Totals.Income = %s, want 500 even with income hidden", report.Totals.Income)
	}
	if !report.Totals.Expense.Equal(d("500")) {
		t.Errorf("Expense = %s, want 500", report.Totals.Expense)
	}
	if report.Report == nil {
		t.Fatal("Report = nil, want stacked chart section")
	}
	if !report.Report.GrandIncome.IsZero() {
		t.Errorf("Report.GrandIncome = %s, want 0 when income is hidden", report.Report.GrandIncome)
	}
	if len(report.Report.IncomeByMonth) != 0 {
		t.Errorf("Report.IncomeByMonth = %v, want empty when income is hidden", report.Report.IncomeByMonth)
	}
	for _, day := range report.Days {
		for _, entry := range day.Entries {
			if entry.Type == core.Income {
				t.Error("income entry leaked into the shared list")
			}
		}
	}
}

func TestBuildSharedOmitsPrivateFields(t *testing.T) {
	store := newFakeStore()
	svc := newReportService(store)
	owner := uuid.New()
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	store.users[owner] = "하늘"
	cat := uuid.New()
	method := uuid.New()
	amount := d("120")
	store.transactions[uuid.New()] = core.Transaction{
		ID:              uuid.New(),
		OwnerID:         owner,
		Date:            mustDate("2025-02-10"),
		Type:            core.Expense,
		CategoryID:      &cat,
		CategoryName:    "식비",
		PaymentMethodID: &method,
		Content:         "점심",
		Memo:            "거래처 미팅",
		ReceiptURL:      "https://receipts.example/r/1.jpg",
		Currency:        core.SecondaryCurrency,
		KRWAmount:       d("4800"),
		TRYAmount:       &amount,
	}

	store.links["tok"] = core.SharedLink{
		Token:           "tok",
		OwnerID:         owner,
		StartDate:       mustDate("2025-01-01"),
		EndDate:         mustDate("2025-03-31"),
		ShowIncome:      true,
		DisplayCurrency: core.DisplayTRY,
	}

	report, err := svc.BuildShared(context.Background(), "tok", now)
	if err != nil {
		t.Fatalf("BuildShared() error = %v", err)
	}

	payload, err := json.Marshal(report)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	for _, secret := range []string{owner.String(), method.String(), "거래처 미팅", "receipts.example"} {
		if strings.Contains(string(payload), secret) {
			t.Errorf("shared payload exposes %q", secret)
		}
	}

	if len(report.Days) != 1 || len(report.Days[0].Entries) != 1 {
		t.Fatalf("Days = %+v, want one day with one entry", report.Days)
	}
	entry := report.Days[0].Entries[0]
	if entry.CategoryName != "식비" {
		t.Errorf("CategoryName = %q, want 식비", entry.CategoryName)
	}
	if !entry.Amount.Equal(d("120")) {
		t.Errorf("Amount = %s, want 120", entry.Amount)
	}
}

func TestDeleteLinkScopedToOwner(t *testing.T) {
	store := newFakeStore()
	svc := newReportService(store)
	owner := uuid.New()

	link, err := svc.CreateLink(context.Background(), owner, LinkInput{
		StartDate: "2025-01-01", EndDate: "2025-01-31",
	})
	if err != nil {
		t.Fatalf("CreateLink() error = %v", err)
	}

	if err := svc.DeleteLink(context.Background(), link.Token, uuid.New()); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("DeleteLink() by another owner = %v, want ErrNotFound", err)
	}
	if err := svc.DeleteLink(context.Background(), link.Token, owner); err != nil {
		t.Errorf("DeleteLink() by owner = %v", err)
	}
}
