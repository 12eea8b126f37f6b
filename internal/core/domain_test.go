package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestExpenseValidate(t *testing.T) {
	valid := Expense{
		Amount:   Money{Cents: 30000},
		Date:     date("2025-06-15"),
		Category: "Food",
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid expense rejected: %v", err)
	}

	t.Run("non-positive amount", func(t *testing.T) {
		e := valid
		e.Amount = Money{Cents: 0}
		if err := e.Validate(); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("expected ErrInvalidAmount, got %v", err)
		}
	})

	t.Run("zero date", func(t *testing.T) {
		e := valid
		e.Date = time.Time{}
		if err := e.Validate(); !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("expected ErrInvalidDate, got %v", err)
		}
	})

	t.Run("blank category", func(t *testing.T) {
		e := valid
		e.Category = "   "
		if err := e.Validate(); !errors.Is(err, ErrEmptyCategory) {
			t.Fatalf("expected ErrEmptyCategory, got %v", err)
		}
	})

	t.Run("oversized description", func(t *testing.T) {
		e := valid
		e.Description = strings.Repeat("x", 201)
		if err := e.Validate(); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestIncomeValidate(t *testing.T) {
	valid := Income{
		Amount: Money{Cents: 500000},
		Date:   date("2025-06-01"),
		Source: "Salary",
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid income rejected: %v", err)
	}

	i := valid
	i.Source = ""
	if err := i.Validate(); !errors.Is(err, ErrEmptySource) {
		t.Fatalf("expected ErrEmptySource, got %v", err)
	}
}

func TestSavingGoalValidateAndRemaining(t *testing.T) {
	g := SavingGoal{
		Name:               "Vacation",
		TargetAmount:       Money{Cents: 200000},
		CurrentSavedAmount: Money{Cents: 150000},
	}
	if err := g.Validate(); err != nil {
		t.Fatalf("valid goal rejected: %v", err)
	}
	if got := g.Remaining().Cents; got != 50000 {
		t.Fatalf("expected remaining 50000, got %d", got)
	}

	g.Name = ""
	if err := g.Validate(); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
}

func TestErrorTaxonomyWrapping(t *testing.T) {
	// Specific validation errors must stay matchable as ErrInvalidInput so
	// the HTTP layer can map the whole family to 400.
	for _, err := range []error{
		ErrInvalidAmount, ErrInvalidDate, ErrEmptyName,
		ErrEmptyCategory, ErrEmptySource, ErrSameAccount, ErrGoalCompleted,
	} {
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%v should wrap ErrInvalidInput", err)
		}
	}
	if !errors.Is(ErrAccountHasLedger, ErrConflict) {
		t.Fatal("ErrAccountHasLedger should wrap ErrConflict")
	}
}

func TestOwnedImplementations(t *testing.T) {
	records := []Owned{
		Account{UserID: 7},
		Expense{UserID: 7},
		Income{UserID: 7},
		SavingGoal{UserID: 7},
		Transfer{UserID: 7},
	}
	for _, r := range records {
		if r.OwnerID() != 7 {
			t.Fatalf("%T reported wrong owner %d", r, r.OwnerID())
		}
	}
}

func TestMonthStart(t *testing.T) {
	in := time.Date(2025, 6, 17, 13, 45, 0, 0, time.Local)
	got := MonthStart(in)
	want := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}
