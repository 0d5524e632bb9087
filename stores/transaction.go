package stores

import (
	"context"

	"github.com/veloxpay/velox/models"
	"gorm.io/gorm"
)

// TransactionStore persists the audit ledger. Create and Finalize are
// deliberately independent statements: there is no transaction spanning
// the processing write and the final status write.
type TransactionStore struct {
	BaseStore
}

func CreateTransactionStore(db *gorm.DB) *TransactionStore {
	return &TransactionStore{BaseStore: BaseStore{db: db}}
}

func (s *TransactionStore) Create(ctx context.Context, tx *models.Transaction) error {
	return s.GetDB(ctx).Create(tx).Error
}

func (s *TransactionStore) Finalize(ctx context.Context, transactionID string, fields map[string]interface{}) error {
	return s.GetDB(ctx).
		Model(&models.Transaction{}).
		Where("transaction_id = ?", transactionID).
		Updates(fields).Error
}

func (s *TransactionStore) GetByTransactionID(ctx context.Context, transactionID string) (*models.Transaction, error) {
	var tx models.Transaction
	if err := s.GetDB(ctx).First(&tx, "transaction_id = ?", transactionID).Error; err != nil {
		return nil, err
	}
	return &tx, nil
}

func (s *TransactionStore) ListByReference(ctx context.Context, referenceTransactionID string) ([]*models.Transaction, error) {
	var txs []*models.Transaction
	if err := s.GetDB(ctx).Where("reference_transaction_id = ?", referenceTransactionID).Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}
