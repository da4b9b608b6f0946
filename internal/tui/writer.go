// Package tui hosts the dashboard view in a terminal.
package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"chainwatch-sim/internal/config"
	"chainwatch-sim/internal/store"
	"chainwatch-sim/internal/view"
)

// teaProgram abstracts bubbletea.Program for testing.
type teaProgram interface {
	Send(tea.Msg)
}

// Writer forwards store states into a running bubbletea program.
type Writer struct {
	program teaProgram
	done    chan struct{}
	err     error

	mu   sync.Mutex
	last uint64
	sent bool
}

// NewWriter starts the dashboard program. Clicks and key presses select
// nodes through sel.
func NewWriter(cfg *config.Config, sel view.Selector, opts ...tea.ProgramOption) *Writer {
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithMouseCellMotion()}, opts...)
	p := tea.NewProgram(newModel(cfg, sel), opts...)
	w := &Writer{program: p, done: make(chan struct{})}
	go func() {
		_, w.err = p.Run()
		close(w.done)
	}()
	return w
}

// Publish hands a state to the program. States older than the last one
// published are dropped, since store notifications may arrive out of order.
func (w *Writer) Publish(st store.State) {
	w.mu.Lock()
	if w.sent && st.Version <= w.last {
		w.mu.Unlock()
		return
	}
	w.last = st.Version
	w.sent = true
	w.mu.Unlock()
	w.program.Send(stateMsg{state: st})
}

// SetAdminAddr shows the browser view address in the header.
func (w *Writer) SetAdminAddr(addr string) {
	w.program.Send(adminMsg{addr: addr})
}

// Done is closed once the program has exited.
func (w *Writer) Done() <-chan struct{} { return w.done }

// Err reports why the program exited. Valid after Done is closed.
func (w *Writer) Err() error { return w.err }

// Close quits the program and waits for the terminal to be restored.
func (w *Writer) Close() error {
	if w.program != nil {
		w.program.Send(tea.Quit())
	}
	if w.done != nil {
		<-w.done
	}
	return w.err
}
