package models

import "errors"

// Sentinel errors shared across the simulation core.
var (
	// ErrMisalignedSeries is fatal: bars and signals do not line up in length
	// or timestamps. Raised before any state mutation.
	ErrMisalignedSeries = errors.New("bars and signals are misaligned")

	// ErrUnorderedBars is fatal: the bar series is not strictly increasing.
	ErrUnorderedBars = errors.New("bar timestamps are not strictly increasing")

	// ErrInsufficientHistory is fatal: not enough bars to simulate.
	ErrInsufficientHistory = errors.New("insufficient bar history")

	// ErrInsufficientFunds is recoverable in-loop: a sized entry cannot be
	// financed after commission. The signal is downgraded to HOLD.
	ErrInsufficientFunds = errors.New("insufficient funds for entry")

	// ErrPositionOpen is returned when an entry is attempted while a
	// position for the symbol is already open.
	ErrPositionOpen = errors.New("position already open for symbol")

	// ErrNoPosition is returned when an exit is attempted with no open
	// position for the symbol.
	ErrNoPosition = errors.New("no open position for symbol")
)
