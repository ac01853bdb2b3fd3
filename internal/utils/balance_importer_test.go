package utils

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestImportBalances(t *testing.T) {
	csvData := `Holder,Token Balance,Mint,Token Account
wallet-a,50000,MINT,acct-a
wallet-b,not-a-number,,
,100,,
wallet-c,20000,,
wallet-d,1,,
`
	var applied []BalanceRow
	apply := func(ctx context.Context, row BalanceRow) error {
		if row.Wallet == "wallet-d" {
			return errors.New("rejected")
		}
		applied = append(applied, row)
		return nil
	}

	result, err := ImportBalances(context.Background(), strings.NewReader(csvData), apply)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if result.TotalRows != 5 || result.Applied != 2 || result.Skipped != 3 {
		t.Errorf("unexpected result: %+v", result)
	}
	if len(result.Errors) != 3 {
		t.Errorf("expected 3 row errors, got %v", result.Errors)
	}

	if applied[0].Wallet != "wallet-a" || applied[0].TokenAccount == nil || applied[0].TokenAccount.Mint != "MINT" {
		t.Errorf("unexpected first row: %+v", applied[0])
	}
	if applied[0].TokenAccount.Owner != "wallet-a" || applied[0].TokenAccount.Address != "acct-a" {
		t.Errorf("unexpected token account: %+v", applied[0].TokenAccount)
	}
	if applied[1].Wallet != "wallet-c" || applied[1].TokenAccount != nil || applied[1].Line != 5 {
		t.Errorf("unexpected second row: %+v", applied[1])
	}
}

func TestImportBalancesRequiresColumns(t *testing.T) {
	_, err := ImportBalances(context.Background(), strings.NewReader("name,score\nx,1\n"), func(context.Context, BalanceRow) error { return nil })
	if err == nil {
		t.Fatal("expected an error for a header without wallet and balance")
	}
}

func TestMaskWallet(t *testing.T) {
	if got := MaskWallet("7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU"); got != "7xKX****gAsU" {
		t.Errorf("unexpected mask %q", got)
	}
	if got := MaskWallet("short"); got != "****" {
		t.Errorf("unexpected mask %q", got)
	}
}
