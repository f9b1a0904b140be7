// Package host runs a command under a PTY and feeds its output
// through a console: the hosted process writes, the pipeline decodes,
// the screen buffer keeps the authoritative grid.
package host

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"os/user"
	"sync"
	"syscall"

	"golang.org/x/term"
	"pkt.systems/pslog"

	"pkt.systems/konsol/internal/config"
	"pkt.systems/konsol/internal/console"
	"pkt.systems/konsol/internal/pipeline"
	"pkt.systems/konsol/internal/pty"
	"pkt.systems/konsol/internal/screenbuffer"
)

// Options configures a hosted session.
type Options struct {
	Shell      string
	Term       string
	Cols       int
	Rows       int
	WrapText   bool
	Stdin      *os.File
	Stdout     *os.File
	DisableRaw bool
	Logger     pslog.Logger

	// OnOutput observes raw PTY output before it reaches the console.
	OnOutput func([]byte)
	// OnSnapshot observes the console state after each output burst.
	OnSnapshot func(console.Snapshot)
}

// Runner executes a hosted session.
type Runner struct {
	opts   Options
	logger pslog.Logger

	reg  *screenbuffer.Registry
	pipe *pipeline.Pipeline
	mu   sync.Mutex

	ptyFile *os.File
	ttyFile *os.File
	cmd     *exec.Cmd

	rawState *term.State
}

// New constructs a Runner.
func New(opts Options) *Runner {
	return &Runner{opts: opts}
}

// Run starts the hosted command and blocks until it exits.
func (r *Runner) Run(ctx context.Context) error {
	if r.opts.Logger == nil {
		r.opts.Logger = pslog.LoggerFromEnv()
	}
	r.logger = r.opts.Logger

	if r.opts.Cols <= 0 || r.opts.Rows <= 0 {
		if cols, rows, err := term.GetSize(int(r.stdout().Fd())); err == nil && cols > 0 && rows > 0 {
			r.opts.Cols, r.opts.Rows = cols, rows
		}
	}
	if r.opts.Cols <= 0 {
		r.opts.Cols = config.DefaultWindowCols
	}
	if r.opts.Rows <= 0 {
		r.opts.Rows = config.DefaultWindowRows
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := r.buildConsole(); err != nil {
		return err
	}

	ptyFile, ttyFile, cmd, err := r.startShell(r.opts.Shell)
	if err != nil {
		return err
	}
	r.ptyFile = ptyFile
	r.ttyFile = ttyFile
	r.cmd = cmd

	defer func() {
		_ = ptyFile.Close()
		if ttyFile != nil {
			_ = ttyFile.Close()
		}
		if cmd.Process != nil {
			_ = cmd.Process.Kill()
		}
	}()

	_ = pty.Resize(ptyFile, r.opts.Cols, r.opts.Rows)

	stdin := r.stdin()
	stdout := r.stdout()
	if !r.opts.DisableRaw {
		state, err := term.MakeRaw(int(stdin.Fd()))
		if err != nil {
			return fmt.Errorf("raw mode: %w", err)
		}
		r.rawState = state
		defer func() {
			_ = term.Restore(int(stdin.Fd()), state)
		}()
	}

	sigCtx, stopSignals := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	sigwinch := make(chan os.Signal, 1)
	signal.Notify(sigwinch, syscall.SIGWINCH)
	defer signal.Stop(sigwinch)

	go func() {
		<-sigCtx.Done()
		if cmd.Process != nil {
			_ = cmd.Process.Kill()
		}
		_ = ptyFile.Close()
	}()

	go func() {
		for {
			select {
			case <-sigCtx.Done():
				return
			case <-sigwinch:
				r.propagateResize(stdout)
			}
		}
	}()

	var wg sync.WaitGroup
	runErr := make(chan error, 1)
	reportErr := func(err error) {
		if err == nil {
			return
		}
		select {
		case runErr <- err:
		default:
		}
	}

	// Local input -> PTY. Left running until process exit; a blocked
	// read on the caller's terminal has nothing to interrupt it.
	go func() {
		buf := make([]byte, 4096)
		for {
			n, err := stdin.Read(buf)
			if err != nil {
				if errors.Is(err, io.EOF) {
					// Translate the closed stdin into the terminal's EOF
					// character so the shell can exit on its own.
					_, _ = ptyFile.Write([]byte{eofChar(ttyFile)})
				} else {
					r.logger.Debug("stdin read error", "err", err)
				}
				return
			}
			if _, err := ptyFile.Write(buf[:n]); err != nil {
				r.logger.Debug("pty write error", "err", err)
				return
			}
		}
	}()

	// PTY -> console + local passthrough.
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer cancel()
		buf := make([]byte, 4096)
		for {
			n, err := readPTY(sigCtx, ptyFile, buf)
			if err != nil {
				if !errors.Is(err, io.EOF) && !errors.Is(err, os.ErrClosed) && !errors.Is(err, context.Canceled) {
					r.logger.Debug("pty read error", "err", err)
					reportErr(err)
				}
				return
			}
			data := buf[:n]
			if r.opts.OnOutput != nil {
				cp := make([]byte, len(data))
				copy(cp, data)
				r.opts.OnOutput(cp)
			}
			r.mu.Lock()
			if err := r.pipe.Write(data); err != nil {
				r.logger.Debug("pipeline write error", "err", err)
			}
			var snap console.Snapshot
			if r.opts.OnSnapshot != nil {
				snap = r.reg.Active().Snapshot()
			}
			r.mu.Unlock()
			if r.opts.OnSnapshot != nil {
				r.opts.OnSnapshot(snap)
			}
			if _, err := stdout.Write(data); err != nil {
				reportErr(err)
				return
			}
		}
	}()

	waitErr := cmd.Wait()
	cancel()
	wg.Wait()

	select {
	case err := <-runErr:
		if waitErr == nil {
			waitErr = err
		}
	default:
	}
	return waitErr
}

// Snapshot captures the console state under the lock.
func (r *Runner) Snapshot() console.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reg.Active().Snapshot()
}

func (r *Runner) buildConsole() error {
	r.reg = screenbuffer.NewRegistry(r.opts.WrapText, r.logger)
	rows := r.opts.Rows
	if r.opts.WrapText {
		// Scrollback above the window.
		rows = config.DefaultRows
		if rows < r.opts.Rows {
			rows = r.opts.Rows
		}
	}
	buf, err := screenbuffer.New(screenbuffer.Options{
		Cols:       r.opts.Cols,
		Rows:       rows,
		WindowCols: r.opts.Cols,
		WindowRows: r.opts.Rows,
		CursorSize: config.DefaultCursorSize,
		VTLevel:    1,
		Logger:     r.logger,
	})
	if err != nil {
		return err
	}
	// Park the viewport on the bottom window of the buffer so output
	// lands in view from the first byte.
	if rows > r.opts.Rows {
		_ = buf.SetViewportOrigin(false, console.Coord{X: 0, Y: rows - r.opts.Rows})
	}
	r.reg.Insert(buf)
	r.pipe = pipeline.New(buf, r.logger)
	return nil
}

func (r *Runner) propagateResize(stdout *os.File) {
	cols, rows, err := term.GetSize(int(stdout.Fd()))
	if err != nil || cols <= 0 || rows <= 0 {
		return
	}
	r.mu.Lock()
	b := r.reg.Active()
	size := console.Coord{X: cols, Y: b.Size().Y}
	if b.IsAlt() || !r.opts.WrapText {
		size.Y = rows
	}
	if err := b.ResizeScreenBuffer(size, false); err != nil {
		r.logger.Warn("screen buffer resize failed", "err", err)
	}
	top := max(0, b.Size().Y-rows)
	b.SetViewportRect(console.Rect{
		Left:   0,
		Top:    top,
		Right:  cols - 1,
		Bottom: top + rows - 1,
	})
	r.mu.Unlock()
	r.opts.Cols, r.opts.Rows = cols, rows
	_ = pty.Resize(r.ptyFile, cols, rows)
	r.logger.Debug("window resized", "cols", cols, "rows", rows)
}

func (r *Runner) startShell(shell string) (*os.File, *os.File, *exec.Cmd, error) {
	if shell == "" {
		shell = loginShell()
	}
	cmd := exec.Command(shell)
	cmd.Env = append(os.Environ(), "TERM="+r.termName())
	ptyFile, ttyFile, err := pty.StartWithTTY(cmd)
	if err != nil {
		return nil, nil, nil, err
	}
	return ptyFile, ttyFile, cmd, nil
}

func (r *Runner) termName() string {
	if r.opts.Term != "" {
		return r.opts.Term
	}
	return config.DefaultTerm
}

func (r *Runner) stdin() *os.File {
	if r.opts.Stdin != nil {
		return r.opts.Stdin
	}
	return os.Stdin
}

func (r *Runner) stdout() *os.File {
	if r.opts.Stdout != nil {
		return r.opts.Stdout
	}
	return os.Stdout
}

func loginShell() string {
	if sh := os.Getenv("SHELL"); sh != "" {
		return sh
	}
	if u, err := user.Current(); err == nil && u.Username == "root" {
		return "/bin/sh"
	}
	return config.DefaultShell
}
