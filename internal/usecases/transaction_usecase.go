package usecases

import (
	"context"

	"github.com/google/uuid"

	"domainlease.backend/internal/domain/entities"
	domainerrors "domainlease.backend/internal/domain/errors"
	"domainlease.backend/internal/domain/repositories"
	"domainlease.backend/pkg/utils"
)

// TransactionUsecase exposes read access to the payment ledger
type TransactionUsecase struct {
	txRepo repositories.TransactionRepository
}

// NewTransactionUsecase creates a new transaction usecase
func NewTransactionUsecase(txRepo repositories.TransactionRepository) *TransactionUsecase {
	return &TransactionUsecase{txRepo: txRepo}
}

// ListMine returns the caller's ledger entries, newest first
func (u *TransactionUsecase) ListMine(ctx context.Context, userID uuid.UUID, page, limit int) ([]*entities.Transaction, *utils.PaginationMeta, error) {
	params := utils.GetPaginationParams(page, limit)
	rows, total, err := u.txRepo.GetByUserID(ctx, userID, params.Limit, params.CalculateOffset())
	if err != nil {
		return nil, nil, err
	}
	meta := utils.CalculateMeta(total, params.Page, params.Limit)
	return rows, &meta, nil
}

// GetByID returns a single ledger entry owned by the caller
func (u *TransactionUsecase) GetByID(ctx context.Context, userID, id uuid.UUID) (*entities.Transaction, error) {
	row, err := u.txRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if row.UserID != userID {
		return nil, domainerrors.Forbidden("not the owner of this ledger entry")
	}
	return row, nil
}
