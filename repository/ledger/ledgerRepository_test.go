package ledgerrepo_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"societypay/model"
	ledgerrepo "societypay/repository/ledger"
	"societypay/util/testutil"
)

func entry(id, orderID string) model.LedgerEntry {
	return model.LedgerEntry{
		ID:            id,
		MemberID:      "M1",
		BillID:        "B1",
		OrderID:       orderID,
		Amount:        decimal.NewFromInt(2500),
		Method:        model.PaymentMethodUPI,
		Mode:          model.LedgerModeOnline,
		Date:          time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC),
		ReceiptNumber: "RCPT-1",
		TransactionID: "UTR123",
		Status:        model.LedgerStatusComplete,
		GatewayDetails: model.GatewayDetails{
			OrderID:   orderID,
			RawStatus: "SUCCESS",
			Amount:    decimal.NewFromInt(2500),
		},
	}
}

func TestAppendIfAbsent_OneEntryPerOrder(t *testing.T) {
	db := testutil.Postgres(t)
	testutil.SeedBill(t, db,
		model.Member{ID: "M1", Name: "Asha", Email: "asha@society.test"},
		model.Bill{ID: "B1", MemberID: "M1", MemberEmail: "asha@society.test", Amount: decimal.NewFromInt(2500), Status: model.BillPending})
	repo := ledgerrepo.New(db)
	ctx := context.Background()
	const orderID = "BILL_B1_1700000000000_4821"

	ok, err := repo.AppendIfAbsent(ctx, entry("TXN_1_aaaaaaaa", orderID))
	require.NoError(t, err)
	require.True(t, ok)

	// a second settlement path for the same order carries a fresh entry id
	ok, err = repo.AppendIfAbsent(ctx, entry("TXN_2_bbbbbbbb", orderID))
	require.NoError(t, err)
	require.False(t, ok)

	rows, err := repo.ListByMember(ctx, "M1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "TXN_1_aaaaaaaa", rows[0].ID)
	require.True(t, rows[0].Amount.Equal(decimal.NewFromInt(2500)))
	require.Equal(t, "SUCCESS", rows[0].GatewayDetails.RawStatus)

	rows, err = repo.ListByMember(ctx, "M2")
	require.NoError(t, err)
	require.Empty(t, rows)
}
