package main

import (
	"time"

	"chainscope-tui/entity"
)

// -------------------- TEA MESSAGES --------------------
// All custom message types for The Elm Architecture

// initSelectionMsg triggers the startup selection after the model is built
type initSelectionMsg struct{}

// tickMsg drives periodic housekeeping (status expiry)
type tickMsg struct {
	at time.Time
}

// addressHydratedMsg contains the result of one address hydration task
type addressHydratedMsg struct {
	data entity.HydratedAddress
}

// transactionHydratedMsg contains the result of one transaction hydration task
type transactionHydratedMsg struct {
	data entity.HydratedTransaction
}

// searchResolvedMsg contains the result of decoding a search query
type searchResolvedMsg struct {
	query string
	ent   entity.Entity
	err   error
}

// clipboardCopiedMsg indicates clipboard copy completed
type clipboardCopiedMsg struct {
	text string
	err  error
}
