// Command wm runs the window-manager process: it connects to the
// compositor's WM endpoint, attaches its own bar surface as an ordinary
// client, and drives the event-driven pump of spec.md §4.6-§4.9.
package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"yulacomp.dev/display/internal/fbdev"
	"yulacomp.dev/display/internal/ipc"
	"yulacomp.dev/display/wm"
)

const pollInterval = 10 * time.Millisecond

// Device and endpoint paths are compiled in; neither process takes
// flags beyond its own name (spec.md §6, CLI surface).
const (
	fbPath = "/dev/fb0" // read-only, for screen size

	clientEndpoint = "/run/yulacomp/compositor"
	wmEndpoint     = "/run/yulacomp/compositor_wm"
)

func main() {
	logger := log.New(os.Stderr, "wm: ", log.LstdFlags|log.Lmicroseconds)

	fb, err := fbdev.Open(fbPath)
	if err != nil {
		logger.Fatalf("open framebuffer: %v", err)
	}
	info := fb.Info()
	fb.Close()

	client := wm.NewCompositorClient(func() (ipc.Conn, error) { return ipc.Connect(wmEndpoint) })

	barConn, err := ipc.Connect(clientEndpoint)
	if err != nil {
		logger.Fatalf("connect %s: %v", clientEndpoint, err)
	}
	barClient := wm.NewBarClient(barConn, uint32(os.Getpid()))

	w := wm.New(client, barClient, logger)
	w.SetScreen(info.Width, info.Height)

	// SIGTERM triggers shutdown; SIGINT is explicitly ignored rather
	// than left to its default (process-terminating) disposition, per
	// spec.md §6.
	signal.Ignore(syscall.SIGINT)
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGTERM)
	done := make(chan struct{})
	go func() {
		<-sig
		logger.Printf("shutting down")
		client.RequestExit()
		close(done)
	}()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			barClient.Close()
			return
		case <-ticker.C:
			w.Step()
		}
	}
}
