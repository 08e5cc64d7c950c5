package model

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/sirupsen/logrus"
	"teenpatti-server/pkg/db"
	"teenpatti-server/pkg/playable/teenpatti"
)

// WalletStore persists player balances and the history of settled rounds
type WalletStore struct {
	db              *sql.DB
	startingBalance int
}

// NewWalletStore returns a store backed by dbh
// A player without a wallet is given startingBalance the first time it is loaded.
func NewWalletStore(dbh *sql.DB, startingBalance int) *WalletStore {
	return &WalletStore{
		db:              dbh,
		startingBalance: startingBalance,
	}
}

// LoadBalance returns the player's balance, opening a wallet if needed
func (w *WalletStore) LoadBalance(ctx context.Context, userID string) (int, error) {
	const query = `
INSERT INTO wallets (user_id, balance)
VALUES ($1, $2)
ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
RETURNING balance`

	var balance int
	if err := w.db.QueryRowContext(ctx, query, userID, w.startingBalance).Scan(&balance); err != nil {
		return 0, err
	}

	return balance, nil
}

// SaveBalance stores the balance a player left the room with
func (w *WalletStore) SaveBalance(ctx context.Context, roomID, userID string, balance int) error {
	if balance < 0 {
		return ErrNegativeBalance
	}

	return w.inTx(ctx, func(tx *sql.Tx) error {
		return setBalance(ctx, tx, userID, balance, "left room", roomID)
	})
}

// SettleRound writes every seated player's balance and appends the round to the match history
// Settling the same round twice returns ErrDuplicateKey and changes nothing.
func (w *WalletStore) SettleRound(ctx context.Context, roomID string, result *teenpatti.RoundResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}

	return w.inTx(ctx, func(tx *sql.Tx) error {
		const insertMatch = `
INSERT INTO match_history (room_id, round_number, winner_user_id, reason, pot, rake, data, ended)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id`

		var matchID int64
		row := tx.QueryRowContext(ctx, insertMatch, roomID, result.RoundNumber, result.WinnerUserID, string(result.Reason), result.Pot, result.Rake, data, result.Timestamp)
		if err := row.Scan(&matchID); err != nil {
			if isDuplicateKey(err) {
				return ErrDuplicateKey
			}

			return err
		}

		stmt, err := tx.PrepareContext(ctx, `INSERT INTO match_history_players (match_id, user_id, balance_after) VALUES ($1, $2, $3)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for userID, balance := range result.Balances {
			if balance < 0 {
				return ErrNegativeBalance
			}

			if err := setBalance(ctx, tx, userID, balance, "round settled", roomID); err != nil {
				return err
			}

			if _, err := stmt.ExecContext(ctx, matchID, userID, balance); err != nil {
				return err
			}
		}

		return nil
	})
}

// MatchHistory returns the most recent rounds the player was seated for
func (w *WalletStore) MatchHistory(ctx context.Context, userID string, limit int) ([]*teenpatti.RoundResult, error) {
	const query = `
SELECT match_history.data
FROM match_history
INNER JOIN match_history_players ON match_history.id = match_history_players.match_id
WHERE match_history_players.user_id = $1
ORDER BY match_history.ended DESC, match_history.id DESC
LIMIT $2`

	rows, err := w.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]*teenpatti.RoundResult, 0, limit)
	for rows.Next() {
		result, err := scanRoundResult(rows)
		if err != nil {
			return nil, err
		}

		results = append(results, result)
	}

	return results, rows.Err()
}

func scanRoundResult(row db.Scanner) (*teenpatti.RoundResult, error) {
	var data []byte
	if err := row.Scan(&data); err != nil {
		return nil, err
	}

	var result teenpatti.RoundResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

func setBalance(ctx context.Context, tx *sql.Tx, userID string, balance int, reason, roomID string) error {
	const query = `
WITH previous AS (
    SELECT balance FROM wallets WHERE user_id = $1 FOR UPDATE
)
INSERT INTO wallets (user_id, balance)
VALUES ($1, $2)
ON CONFLICT (user_id) DO UPDATE SET balance = EXCLUDED.balance, updated = (NOW() AT TIME ZONE 'utc')
RETURNING (SELECT balance FROM previous)`

	var before sql.NullInt64
	if err := tx.QueryRowContext(ctx, query, userID, balance).Scan(&before); err != nil {
		return err
	}

	if before.Valid && int(before.Int64) == balance {
		return nil
	}

	const ledger = `
INSERT INTO wallet_ledger (user_id, balance_before, balance_after, reason, room_id)
VALUES ($1, $2, $3, $4, $5)`

	_, err := tx.ExecContext(ctx, ledger, userID, before.Int64, balance, reason, roomID)
	return err
}

func (w *WalletStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			logrus.WithError(rbErr).Error("could not rollback transaction")
		}

		return err
	}

	return tx.Commit()
}
