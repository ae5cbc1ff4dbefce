package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/skip2/go-qrcode"
)

const qrSize = 256

// Run wires the transport, session, and terminal together and blocks
// until the session ends or the process is signalled.
func Run(ctx context.Context, cfg *Config) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logf(cfg, "START: playsync v%s", releaseVersion)

	if cfg.qrFile != "" {
		err := qrcode.WriteFile(cfg.invite(), qrcode.Medium, qrSize, cfg.qrFile)
		if err != nil {
			return err
		}
		logf(cfg, "START: Invite QR for %s written to %s", cfg.invite(), cfg.qrFile)
	}

	if cfg.profile {
		go func() {
			_ = serveDiagnostics(ctx, cfg)
		}()
	}

	conn := NewConn(cfg)
	defer conn.Close()

	ui := newTerminalUI(cfg, os.Stdout)
	session := NewSession(cfg, conn, ui)
	ui.bind(session)
	conn.Dial()

	ui.Notice("Invite a friend: " + cfg.invite())

	go ui.runInput(ctx, os.Stdin)

	select {
	case <-ctx.Done():
		session.Leave()
	case <-session.Done():
	}

	return session.Err()
}
