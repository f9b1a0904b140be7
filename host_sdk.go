package konsol

import (
	"context"
	"os"

	"pkt.systems/pslog"

	"pkt.systems/konsol/internal/console"
	"pkt.systems/konsol/internal/host"
)

// HostOptions configures an interactive hosted session.
type HostOptions struct {
	Shell      string
	Term       string
	Cols       int
	Rows       int
	WrapText   bool
	Stdin      *os.File
	Stdout     *os.File
	DisableRaw bool
	Logger     pslog.Logger
	OnOutput   func([]byte)
	OnSnapshot func(console.Snapshot)
}

// Host runs a command under a PTY with its output mirrored into a
// console screen buffer, blocking until the command exits.
func Host(ctx context.Context, opts HostOptions) error {
	return host.New(host.Options{
		Shell:      opts.Shell,
		Term:       opts.Term,
		Cols:       opts.Cols,
		Rows:       opts.Rows,
		WrapText:   opts.WrapText,
		Stdin:      opts.Stdin,
		Stdout:     opts.Stdout,
		DisableRaw: opts.DisableRaw,
		Logger:     opts.Logger,
		OnOutput:   opts.OnOutput,
		OnSnapshot: opts.OnSnapshot,
	}).Run(ctx)
}
