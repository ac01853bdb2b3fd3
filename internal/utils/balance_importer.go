package utils

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ArowuTest/jackpot-ledger/internal/models"
)

// BalanceRow is one holder line of an exported balance list.
type BalanceRow struct {
	Line         int
	Wallet       string
	Balance      uint64
	TokenAccount *models.TokenAccount
}

// ApplyFunc records one row. Returning an error marks the row failed; the
// import continues with the next row.
type ApplyFunc func(ctx context.Context, row BalanceRow) error

// ImportResult summarises an import run.
type ImportResult struct {
	TotalRows int      `json:"totalRows"`
	Applied   int      `json:"applied"`
	Skipped   int      `json:"skipped"`
	Errors    []string `json:"errors"`
}

// ImportBalances reads a CSV holder list and calls apply for every valid
// row. The header must name a wallet and a balance column; mint, token
// account and amount columns are optional and, when present, describe the
// account the balance was read from.
func ImportBalances(ctx context.Context, r io.Reader, apply ApplyFunc) (*ImportResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	walletIdx := findColumnIndex(header, []string{"Wallet", "Owner", "Holder", "Address"})
	balanceIdx := findColumnIndex(header, []string{"Balance", "Amount", "Token Balance"})
	mintIdx := findColumnIndex(header, []string{"Mint", "Token Mint"})
	accountIdx := findColumnIndex(header, []string{"Token Account", "Account"})

	if walletIdx == -1 || balanceIdx == -1 {
		return nil, errors.New("wallet and balance columns are required")
	}

	result := &ImportResult{Errors: []string{}}
	line := 1
	for {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", line, err))
			result.Skipped++
			continue
		}
		result.TotalRows++

		wallet := strings.TrimSpace(column(row, walletIdx))
		if wallet == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: no wallet", line))
			result.Skipped++
			continue
		}

		balance, err := strconv.ParseUint(strings.TrimSpace(column(row, balanceIdx)), 10, 64)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: invalid balance %q", line, column(row, balanceIdx)))
			result.Skipped++
			continue
		}

		entry := BalanceRow{Line: line, Wallet: wallet, Balance: balance}
		if mint := strings.TrimSpace(column(row, mintIdx)); mint != "" {
			entry.TokenAccount = &models.TokenAccount{
				Address: strings.TrimSpace(column(row, accountIdx)),
				Mint:    mint,
				Owner:   wallet,
				Amount:  balance,
			}
		}

		if err := apply(ctx, entry); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", line, err))
			result.Skipped++
			continue
		}
		result.Applied++
	}
	return result, nil
}

func findColumnIndex(header []string, possibleNames []string) int {
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		for _, name := range possibleNames {
			if strings.ToLower(name) == h {
				return i
			}
		}
	}
	return -1
}

func column(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
