package payments

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promopay/promopay_backend/internal/core/domain"
)

func TestSettlementDeltas(t *testing.T) {
	walletA := "11111111-1111-1111-1111-111111111111"
	walletB := "22222222-2222-2222-2222-222222222222"

	t.Run("deposit credits destination", func(t *testing.T) {
		deltas, err := SettlementDeltas(&domain.Transaction{
			Kind:         domain.KindDeposit,
			Amount:       5000,
			DestWalletID: &walletA,
		})
		require.NoError(t, err)
		assert.Equal(t, map[string]int64{walletA: 5000}, deltas)
	})

	t.Run("withdrawal debits source", func(t *testing.T) {
		deltas, err := SettlementDeltas(&domain.Transaction{
			Kind:           domain.KindWithdrawal,
			Amount:         3000,
			SourceWalletID: &walletA,
		})
		require.NoError(t, err)
		assert.Equal(t, map[string]int64{walletA: -3000}, deltas)
	})

	t.Run("release moves between wallets", func(t *testing.T) {
		deltas, err := SettlementDeltas(&domain.Transaction{
			Kind:           domain.KindRelease,
			Amount:         8000,
			SourceWalletID: &walletA,
			DestWalletID:   &walletB,
		})
		require.NoError(t, err)
		assert.Equal(t, map[string]int64{walletA: -8000, walletB: 8000}, deltas)
	})

	t.Run("refund moves between wallets", func(t *testing.T) {
		deltas, err := SettlementDeltas(&domain.Transaction{
			Kind:           domain.KindRefund,
			Amount:         10000,
			SourceWalletID: &walletA,
			DestWalletID:   &walletB,
		})
		require.NoError(t, err)
		assert.Equal(t, map[string]int64{walletA: -10000, walletB: 10000}, deltas)
	})

	t.Run("commission nets to zero", func(t *testing.T) {
		deltas, err := SettlementDeltas(&domain.Transaction{
			Kind:           domain.KindCommission,
			Amount:         2000,
			SourceWalletID: &walletA,
			DestWalletID:   &walletA,
		})
		require.NoError(t, err)
		assert.Empty(t, deltas)
	})

	t.Run("same-wallet release drops the zero entry", func(t *testing.T) {
		deltas, err := SettlementDeltas(&domain.Transaction{
			Kind:           domain.KindRelease,
			Amount:         8000,
			SourceWalletID: &walletA,
			DestWalletID:   &walletA,
		})
		require.NoError(t, err)
		assert.Empty(t, deltas)
	})

	t.Run("deposit without destination errors", func(t *testing.T) {
		_, err := SettlementDeltas(&domain.Transaction{Kind: domain.KindDeposit, Amount: 100})
		assert.Error(t, err)
	})

	t.Run("release missing a wallet errors", func(t *testing.T) {
		_, err := SettlementDeltas(&domain.Transaction{
			Kind:           domain.KindRelease,
			Amount:         100,
			SourceWalletID: &walletA,
		})
		assert.Error(t, err)
	})

	t.Run("unknown kind errors", func(t *testing.T) {
		_, err := SettlementDeltas(&domain.Transaction{Kind: "BONUS", Amount: 100})
		assert.Error(t, err)
	})
}
