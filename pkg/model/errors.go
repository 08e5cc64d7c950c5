package model

import (
	"errors"

	"github.com/lib/pq"
)

const pqDuplicateKeyErrorCode pq.ErrorCode = "23505"

// ErrDuplicateKey happens when a round is settled twice
var ErrDuplicateKey = errors.New("duplicate key constraint violation")

// ErrNegativeBalance is returned when asked to store a balance below zero
var ErrNegativeBalance = errors.New("balance cannot be negative")

func isDuplicateKey(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqDuplicateKeyErrorCode
}
