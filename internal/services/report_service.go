package services

import (
	"context"
	"fmt"
	"log/slog"

	"budgetwise/internal/core"
	"budgetwise/internal/log"
	"budgetwise/internal/ports"
)

type ReportService struct {
	users    ports.UserResolver
	incomes  ports.TransactionStore
	expenses ports.TransactionStore
}

func NewReportService(users ports.UserResolver, incomes, expenses ports.TransactionStore) *ReportService {
	return &ReportService{users: users, incomes: incomes, expenses: expenses}
}

// Report totals every income and expense the caller ever recorded.
func (s *ReportService) Report(ctx context.Context, caller core.Identity) (core.Report, error) {
	u, err := s.users.ResolveUser(ctx, caller)
	if err != nil {
		return core.Report{}, err
	}
	incomes, err := s.incomes.ListTransactions(ctx, u.ID)
	if err != nil {
		return core.Report{}, fmt.Errorf("list incomes: %w", err)
	}
	expenses, err := s.expenses.ListTransactions(ctx, u.ID)
	if err != nil {
		return core.Report{}, fmt.Errorf("list expenses: %w", err)
	}
	report := core.BuildReport(incomes, expenses)
	slog.DebugContext(ctx, "Report built",
		log.FieldComponent, log.ComponentReport,
		log.FieldOperation, log.OpReport,
		log.FieldUserID, u.ID,
		"incomes", len(incomes),
		"expenses", len(expenses))
	return report, nil
}
