// Package notify delivers trading events to the operator and accepts
// operator commands back.
package notify

import "rug-surfer/internal/domain"

// Notifier pushes trading events to the operator. Implementations must not
// block the engine: delivery failures are logged and dropped.
type Notifier interface {
	// Signal reports an entry signal that was not traded automatically.
	Signal(mint, info string, simulated bool)
	// Entry reports an opened position.
	Entry(pos *domain.Position)
	// Exit reports a closed position.
	Exit(mint, reason string, pnlPercent float64, simulated bool)
	// Alert reports an urgent risk event.
	Alert(text string)
	// Info sends a plain informational message.
	Info(text string)
}

// CommandKind enumerates operator commands.
type CommandKind int

const (
	CmdStart CommandKind = iota
	CmdStatus
	CmdAutoOn
	CmdAutoOff
	CmdPaperOn
	CmdPaperOff
	CmdTrack
	CmdClose
	CmdRugRisk
)

// Command is one parsed operator instruction. Arg carries the mint or URL
// for commands that take one.
type Command struct {
	Kind CommandKind
	Arg  string
}

// CommandSource exposes operator commands to the engine.
type CommandSource interface {
	Commands() <-chan Command
}
