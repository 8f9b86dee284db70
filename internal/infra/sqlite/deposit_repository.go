package sqlite

import (
	"context"
	"database/sql"

	"github.com/juju/errors"

	"github.com/fardannozami/faccao-bot/internal/domain"
)

type DepositRepository struct {
	db *sql.DB
}

func NewDepositRepository(db *sql.DB) *DepositRepository {
	return &DepositRepository{db: db}
}

func (r *DepositRepository) GetDeposit(ctx context.Context, userID string) (*domain.Deposit, error) {
	query := `SELECT user_id, name, quantity, proof_reference FROM deposits WHERE user_id = ?`
	row := r.db.QueryRowContext(ctx, query, userID)

	var d domain.Deposit
	err := row.Scan(&d.UserID, &d.Name, &d.Quantity, &d.ProofReference)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Annotatef(err, "reading deposit of %s", userID)
	}
	return &d, nil
}

// AddDeposit increments in a single statement so two deposits racing for the
// same user cannot lose an update. A sum past int64 would turn into a REAL
// in SQLite; it becomes NULL instead and the NOT NULL constraint rejects it,
// leaving the row as it was.
func (r *DepositRepository) AddDeposit(ctx context.Context, userID, name string, quantity int64, proofReference string) (int64, error) {
	query := `
		INSERT INTO deposits (user_id, name, quantity, proof_reference)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			name = excluded.name,
			quantity = CASE
				WHEN excluded.quantity > 0 AND deposits.quantity > 9223372036854775807 - excluded.quantity THEN NULL
				ELSE deposits.quantity + excluded.quantity
			END,
			proof_reference = excluded.proof_reference
		RETURNING quantity
	`
	var total int64
	err := r.db.QueryRowContext(ctx, query, userID, name, quantity, proofReference).Scan(&total)
	if err != nil {
		return 0, errors.Annotatef(err, "adding deposit of %s", userID)
	}
	return total, nil
}

func (r *DepositRepository) GetAllDeposits(ctx context.Context) ([]*domain.Deposit, error) {
	query := `SELECT user_id, name, quantity, proof_reference FROM deposits ORDER BY quantity DESC, rowid ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Annotate(err, "listing deposits")
	}
	defer rows.Close()

	var deposits []*domain.Deposit
	for rows.Next() {
		var d domain.Deposit
		if err := rows.Scan(&d.UserID, &d.Name, &d.Quantity, &d.ProofReference); err != nil {
			return nil, errors.Trace(err)
		}
		deposits = append(deposits, &d)
	}
	return deposits, errors.Trace(rows.Err())
}

// DeleteAllDeposits clears the week in one statement and returns how many
// records were removed.
func (r *DepositRepository) DeleteAllDeposits(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM deposits`)
	if err != nil {
		return 0, errors.Annotate(err, "clearing deposits")
	}
	n, err := res.RowsAffected()
	return n, errors.Trace(err)
}

// ResolveLIDToPhone maps a WhatsApp LID to the phone number whatsmeow stored
// for it. The input is returned unchanged when no mapping exists.
func (r *DepositRepository) ResolveLIDToPhone(ctx context.Context, lid string) string {
	var pn string
	err := r.db.QueryRowContext(ctx, `SELECT pn FROM whatsmeow_lid_map WHERE lid = ?`, lid).Scan(&pn)
	if err != nil || pn == "" {
		return lid
	}
	return pn
}

func (r *DepositRepository) InitTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS deposits (
			user_id TEXT PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			quantity INTEGER NOT NULL DEFAULT 0 CHECK (typeof(quantity) = 'integer'),
			proof_reference TEXT NOT NULL DEFAULT ''
		);
	`
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return errors.Annotate(err, "creating deposits table")
	}
	return errors.Trace(r.importLegacy(ctx))
}

// importLegacy moves rows from the old metas(user, quantidade, imagem) table,
// which had no key and could hold several rows per user.
func (r *DepositRepository) importLegacy(ctx context.Context) error {
	var name string
	err := r.db.QueryRowContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'metas'`).Scan(&name)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return errors.Trace(err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Trace(err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO deposits (user_id, name, quantity, proof_reference)
		SELECT user, '', CAST(SUM(COALESCE(quantidade, 0)) AS INTEGER), COALESCE(MAX(imagem), '')
		FROM metas WHERE user IS NOT NULL GROUP BY user
		ON CONFLICT(user_id) DO UPDATE SET
			quantity = deposits.quantity + excluded.quantity
	`)
	if err != nil {
		return errors.Annotate(err, "importing legacy metas")
	}
	if _, err := tx.ExecContext(ctx, `DROP TABLE metas`); err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(tx.Commit())
}
