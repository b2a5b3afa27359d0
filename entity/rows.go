package entity

import (
	"fmt"
	"math/big"
	"strings"
)

// Direction classifies a transaction relative to the viewed address.
type Direction int

const (
	DirectionIncoming Direction = iota
	DirectionOutgoing
	DirectionSelfTransfer
	DirectionInteraction
)

func (d Direction) String() string {
	switch d {
	case DirectionIncoming:
		return "Incoming"
	case DirectionOutgoing:
		return "Outgoing"
	case DirectionSelfTransfer:
		return "Self"
	default:
		return "Interaction"
	}
}

// RawTransaction is one entry of an account's transaction history as the
// explorer API reports it, after numeric parsing.
type RawTransaction struct {
	Hash     string
	From     string
	To       string
	ValueWei *big.Int
	Block    uint64
	Failed   bool
	Input    string
}

// AddressTransactionRow is a display-ready table row plus the raw fields
// needed to seed a transaction preview later.
type AddressTransactionRow struct {
	Hash         string
	Direction    Direction
	Counterparty string
	Value        string
	Block        string
	Status       string

	From     string
	To       string
	ValueWei *big.Int
	BlockNum uint64
	Failed   bool
	Input    string
}

// NewRow derives a table row for tx as seen from target. Pure.
func NewRow(target string, tx RawTransaction) AddressTransactionRow {
	sender := strings.EqualFold(tx.From, target)
	recipient := tx.To != "" && strings.EqualFold(tx.To, target)

	var dir Direction
	switch {
	case sender && recipient:
		dir = DirectionSelfTransfer
	case sender:
		dir = DirectionOutgoing
	case recipient:
		dir = DirectionIncoming
	default:
		dir = DirectionInteraction
	}

	var counterparty string
	switch dir {
	case DirectionSelfTransfer:
		counterparty = "Self"
	case DirectionOutgoing:
		if tx.To != "" {
			counterparty = ShortHex(tx.To)
		} else {
			counterparty = "Contract creation"
		}
	case DirectionIncoming:
		counterparty = ShortHex(tx.From)
	default:
		if tx.To != "" {
			counterparty = ShortHex(tx.To)
		} else {
			counterparty = ShortHex(tx.From)
		}
	}

	// The amount always shows; the sign marks nonzero value entering or
	// leaving the viewed address.
	value := FormatEth(tx.ValueWei) + " ETH"
	if tx.ValueWei != nil && tx.ValueWei.Sign() > 0 {
		switch dir {
		case DirectionOutgoing:
			value = "-" + value
		case DirectionIncoming:
			value = "+" + value
		}
	}

	var block string
	if tx.Block > 0 {
		block = fmt.Sprintf("%d", tx.Block)
	}

	status := "OK"
	if tx.Failed {
		status = "Failed"
	}

	return AddressTransactionRow{
		Hash:         tx.Hash,
		Direction:    dir,
		Counterparty: counterparty,
		Value:        value,
		Block:        block,
		Status:       status,
		From:         tx.From,
		To:           tx.To,
		ValueWei:     tx.ValueWei,
		BlockNum:     tx.Block,
		Failed:       tx.Failed,
		Input:        tx.Input,
	}
}

// SummaryLines renders a cached preview row as the transaction Summary tab.
// A nil row renders placeholders for everything but the hash.
func SummaryLines(hash string, row *AddressTransactionRow) []string {
	const notCached = "Not cached"
	lines := []string{"Hash: " + hash}
	if row == nil {
		return append(lines,
			"Status: "+notCached,
			"From: "+notCached,
			"To: "+notCached,
			"Value: "+notCached,
			"Block: "+notCached,
			"Calldata: "+notCached,
		)
	}
	to := row.To
	if to == "" {
		to = "Contract creation"
	}
	block := row.Block
	if block == "" {
		block = "Pending"
	}
	return append(lines,
		"Status: "+row.Status,
		"From: "+row.From,
		"To: "+to,
		fmt.Sprintf("Value: %s ETH", FormatEth(row.ValueWei)),
		"Block: "+block,
		"Calldata: "+calldataSummary(row.Input),
	)
}

func calldataSummary(input string) string {
	trimmed := strings.TrimPrefix(input, "0x")
	if trimmed == "" {
		return "0x (empty)"
	}
	return fmt.Sprintf("%s (%d bytes)", ShortHex(input), len(trimmed)/2)
}
