package service

import (
	"context"
	"sort"
	"time"

	"go-ledger-api/model"
	"go-ledger-api/repository"

	"github.com/shopspring/decimal"
)

const recentTransactionCount = 5

// AccountSummary is the dashboard headline view: balances plus income and
// expense totals folded from the transaction log.
type AccountSummary struct {
	Balance            decimal.Decimal      `json:"balance"`
	AvailableBalance   decimal.Decimal      `json:"available_balance"`
	PendingAmount      decimal.Decimal      `json:"pending_amount"`
	TotalIncome        decimal.Decimal      `json:"total_income"`
	TotalExpenses      decimal.Decimal      `json:"total_expenses"`
	RecentTransactions []*model.Transaction `json:"recent_transactions"`
}

// MonthlyFlow is the net money movement (credits minus debits) in one
// calendar month.
type MonthlyFlow struct {
	Month string          `json:"month"` // "2006-01"
	Total decimal.Decimal `json:"total"`
}

// SummaryService derives read-only aggregate views from the ledger. Every
// call recomputes from scratch; per-owner ledgers are small enough that
// incremental state would be pure liability.
type SummaryService struct {
	ledgers repository.ILedgerRepository
	// now is injectable for deterministic month windows in tests.
	now func() time.Time
}

func NewSummaryService(ledgers repository.ILedgerRepository) *SummaryService {
	return &SummaryService{ledgers: ledgers, now: time.Now}
}

// AccountSummary folds the whole ledger into the dashboard headline
// numbers. Balance is the sum of explicit account balances.
func (s *SummaryService) AccountSummary(ctx context.Context, ownerID string) (*AccountSummary, error) {
	summary := &AccountSummary{
		Balance:            decimal.Zero,
		AvailableBalance:   decimal.Zero,
		PendingAmount:      decimal.Zero,
		TotalIncome:        decimal.Zero,
		TotalExpenses:      decimal.Zero,
		RecentTransactions: []*model.Transaction{},
	}

	err := s.ledgers.View(ctx, ownerID, func(l *model.Ledger) error {
		for _, a := range l.Accounts {
			summary.Balance = summary.Balance.Add(a.Balance)
		}

		recent := make([]*model.Transaction, 0, len(l.Transactions))
		for _, t := range l.Transactions {
			cp := *t
			recent = append(recent, &cp)

			switch t.Status {
			case model.StatusPending:
				if t.Direction == model.DirectionDebit {
					summary.PendingAmount = summary.PendingAmount.Add(t.Amount)
				}
			case model.StatusCompleted:
				if t.Direction == model.DirectionCredit {
					summary.TotalIncome = summary.TotalIncome.Add(t.Amount)
				} else {
					summary.TotalExpenses = summary.TotalExpenses.Add(t.Amount)
				}
			}
		}

		sort.SliceStable(recent, func(i, j int) bool {
			return recent[i].CreatedAt.After(recent[j].CreatedAt)
		})
		if len(recent) > recentTransactionCount {
			recent = recent[:recentTransactionCount]
		}
		summary.RecentTransactions = recent
		return nil
	})
	if err != nil {
		return nil, err
	}

	summary.AvailableBalance = summary.Balance.Sub(summary.PendingAmount)
	return summary, nil
}

// SpendingByCategory totals completed debits per category. Transactions
// without a category land under "uncategorized".
func (s *SummaryService) SpendingByCategory(ctx context.Context, ownerID string) (map[string]decimal.Decimal, error) {
	totals := make(map[string]decimal.Decimal)
	err := s.ledgers.View(ctx, ownerID, func(l *model.Ledger) error {
		for _, t := range l.Transactions {
			if t.Direction != model.DirectionDebit || t.Status != model.StatusCompleted {
				continue
			}
			category := t.Category
			if category == "" {
				category = "uncategorized"
			}
			totals[category] = totals[category].Add(t.Amount)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return totals, nil
}

// MonthOverMonth returns the net flow for each of the trailing monthsBack
// calendar months, oldest first. Months with no activity report zero.
func (s *SummaryService) MonthOverMonth(ctx context.Context, ownerID string, monthsBack int) ([]MonthlyFlow, error) {
	if monthsBack < 1 {
		monthsBack = 1
	}

	now := s.now().UTC()
	currentMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	totals := make(map[string]decimal.Decimal, monthsBack)
	months := make([]string, 0, monthsBack)
	for i := monthsBack - 1; i >= 0; i-- {
		key := currentMonth.AddDate(0, -i, 0).Format("2006-01")
		months = append(months, key)
		totals[key] = decimal.Zero
	}

	err := s.ledgers.View(ctx, ownerID, func(l *model.Ledger) error {
		for _, t := range l.Transactions {
			if t.Status != model.StatusCompleted {
				continue
			}
			key := t.CreatedAt.UTC().Format("2006-01")
			total, inWindow := totals[key]
			if !inWindow {
				continue
			}
			if t.Direction == model.DirectionCredit {
				totals[key] = total.Add(t.Amount)
			} else {
				totals[key] = total.Sub(t.Amount)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	flows := make([]MonthlyFlow, 0, len(months))
	for _, m := range months {
		flows = append(flows, MonthlyFlow{Month: m, Total: totals[m]})
	}
	return flows, nil
}
