package csvfile

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"rug-surfer/internal/domain"
)

// ParseJournal decodes journal bytes back into closed trades. Used by List
// and by the offline report command.
func ParseJournal(data []byte) ([]*domain.ClosedTrade, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = len(header)

	// Header row
	if _, err := r.Read(); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("read journal header: %w", err)
	}

	var trades []*domain.ClosedTrade
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read journal row: %w", err)
		}

		t, err := parseRow(row)
		if err != nil {
			return nil, err
		}
		trades = append(trades, t)
	}
	return trades, nil
}

func parseRow(row []string) (*domain.ClosedTrade, error) {
	var (
		t   domain.ClosedTrade
		err error
	)

	t.TradeID = row[0]
	t.Mint = row[1]

	ints := map[int]*int64{2: &t.EntryTimeMs, 3: &t.ExitTimeMs}
	for idx, dst := range ints {
		if *dst, err = strconv.ParseInt(row[idx], 10, 64); err != nil {
			return nil, fmt.Errorf("parse %s: %w", header[idx], err)
		}
	}

	floats := map[int]*float64{
		4:  &t.EntryPrice,
		5:  &t.ExitPrice,
		6:  &t.PnlPercent,
		7:  &t.PnlBase,
		9:  &t.Features.Liquidity,
		10: &t.Features.MarketCap,
		11: &t.Features.RugSupplyShare,
		12: &t.Features.RugSupplyDelta,
		13: &t.Features.ConcentrationTop3,
		14: &t.Features.LiqToMcRatio,
		15: &t.Features.BetaRugVolume,
		16: &t.Features.BuyVolume,
		17: &t.Features.SellVolume,
		18: &t.Features.BuySpeed,
		19: &t.Features.FlashPatternScore,
		20: &t.Features.MultiWalletScore,
		21: &t.Features.WhaleDumpScore,
		22: &t.PRugEntry,
		23: &t.PRugExit,
	}
	for idx, dst := range floats {
		if *dst, err = strconv.ParseFloat(row[idx], 64); err != nil {
			return nil, fmt.Errorf("parse %s: %w", header[idx], err)
		}
	}

	t.ExitReason = row[8]
	if t.Simulated, err = strconv.ParseBool(row[24]); err != nil {
		return nil, fmt.Errorf("parse simulation flag: %w", err)
	}
	t.Features.Mint = t.Mint
	t.Features.Price = t.ExitPrice

	return &t, nil
}
