package payments

import (
	"fmt"

	"github.com/promopay/promopay_backend/internal/core/domain"
)

// SettlementDeltas computes the per-wallet balance changes a successful
// settlement applies for a transaction. Keys are wallet IDs, values are
// signed centavo deltas. Kinds that keep money inside one account (a
// platform-to-platform commission) net to zero and produce no entries.
func SettlementDeltas(txn *domain.Transaction) (map[string]int64, error) {
	deltas := make(map[string]int64)
	switch txn.Kind {
	case domain.KindDeposit:
		if txn.DestWalletID == nil {
			return nil, fmt.Errorf("deposit %s has no destination wallet", txn.TransactionID)
		}
		deltas[*txn.DestWalletID] += txn.Amount
	case domain.KindWithdrawal:
		if txn.SourceWalletID == nil {
			return nil, fmt.Errorf("withdrawal %s has no source wallet", txn.TransactionID)
		}
		deltas[*txn.SourceWalletID] -= txn.Amount
	case domain.KindRelease, domain.KindRefund:
		if txn.SourceWalletID == nil || txn.DestWalletID == nil {
			return nil, fmt.Errorf("%s %s must reference both wallets", txn.Kind, txn.TransactionID)
		}
		deltas[*txn.SourceWalletID] -= txn.Amount
		deltas[*txn.DestWalletID] += txn.Amount
	case domain.KindEscrow:
		if txn.SourceWalletID == nil || txn.DestWalletID == nil {
			return nil, fmt.Errorf("escrow %s must reference both wallets", txn.TransactionID)
		}
		deltas[*txn.SourceWalletID] -= txn.Amount
		deltas[*txn.DestWalletID] += txn.Amount
	case domain.KindCommission:
		// Recorded for audit; source and destination are the same wallet.
	default:
		return nil, fmt.Errorf("unknown transaction kind %q", txn.Kind)
	}

	// Drop zero entries produced by same-wallet legs.
	for id, d := range deltas {
		if d == 0 {
			delete(deltas, id)
		}
	}
	return deltas, nil
}
