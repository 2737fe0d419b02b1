package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"budgetwise/internal/core"
	"budgetwise/internal/log"
)

// transactionTable serves the incomes and expenses tables, which share a schema.
type transactionTable struct {
	db    *sql.DB
	table string
	kind  core.TransactionKind
}

func (t *transactionTable) selectSQL() string {
	return `SELECT t.id, t.amount, t.description, t.date, t.user_id,
	               c.id, c.name, c.type, c.user_id
	          FROM ` + t.table + ` t
	     LEFT JOIN categories c ON c.id = t.category_id`
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (t *transactionTable) scan(row rowScanner) (core.Transaction, error) {
	var (
		tx      core.Transaction
		date    string
		catID   sql.NullInt64
		catName sql.NullString
		catType sql.NullString
		catUser sql.NullInt64
	)
	if err := row.Scan(&tx.ID, &tx.Amount, &tx.Description, &date, &tx.UserID,
		&catID, &catName, &catType, &catUser); err != nil {
		return core.Transaction{}, err
	}

	d, err := core.ParseDate(date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("stored date %q: %w", date, err)
	}
	tx.Date = d
	tx.Kind = t.kind
	if catID.Valid {
		tx.Category = &core.Category{
			ID:     catID.Int64,
			Name:   catName.String,
			Type:   core.CategoryType(catType.String),
			UserID: catUser.Int64,
		}
	}
	return tx, nil
}

func (t *transactionTable) FindTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	tx, err := t.scan(t.db.QueryRowContext(ctx, t.selectSQL()+` WHERE t.id = ?`, id))
	if err != nil {
		return core.Transaction{}, notFound(err, core.ErrTransactionNotFound)
	}
	return tx, nil
}

func (t *transactionTable) ListTransactions(ctx context.Context, userID int64) ([]core.Transaction, error) {
	rows, err := t.db.QueryContext(ctx, t.selectSQL()+` WHERE t.user_id = ? ORDER BY t.id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", t.table, err)
	}
	defer rows.Close()

	out := make([]core.Transaction, 0)
	for rows.Next() {
		tx, err := t.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", t.kind, err)
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

func (t *transactionTable) CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	var id int64
	err := t.db.QueryRowContext(ctx,
		`INSERT INTO `+t.table+` (amount, description, date, category_id, user_id)
		 VALUES (?, ?, ?, ?, ?) RETURNING id`,
		tx.Amount, tx.Description, tx.Date.String(), nullableID(tx.CategoryID()), tx.UserID,
	).Scan(&id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return core.Transaction{}, core.ErrCategoryNotFound
		}
		return core.Transaction{}, fmt.Errorf("create %s: %w", t.kind, err)
	}

	slog.DebugContext(ctx, "Transaction saved to SQLite",
		log.FieldComponent, log.ComponentStorage,
		log.FieldKind, t.kind,
		log.FieldTransactionID, id,
		log.FieldAmount, tx.Amount.String(),
		"date", tx.Date.String())

	return t.FindTransaction(ctx, id)
}

func (t *transactionTable) UpdateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	res, err := t.db.ExecContext(ctx,
		`UPDATE `+t.table+` SET amount = ?, description = ?, date = ?, category_id = ? WHERE id = ?`,
		tx.Amount, tx.Description, tx.Date.String(), nullableID(tx.CategoryID()), tx.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return core.Transaction{}, core.ErrCategoryNotFound
		}
		return core.Transaction{}, fmt.Errorf("update %s: %w", t.kind, err)
	}
	if err := checkAffected(res, core.ErrTransactionNotFound); err != nil {
		return core.Transaction{}, err
	}
	return t.FindTransaction(ctx, tx.ID)
}

func (t *transactionTable) DeleteTransaction(ctx context.Context, id int64) error {
	res, err := t.db.ExecContext(ctx, `DELETE FROM `+t.table+` WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", t.kind, err)
	}
	return checkAffected(res, core.ErrTransactionNotFound)
}

func nullableID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id != 0}
}
