package logging

import (
	"io"
	"log"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New opens a file-backed logger. The terminal belongs to the TUI, so an
// empty path disables logging entirely. The returned closer must be closed on
// shutdown.
func New(path string, verbosity int) (logr.Logger, io.Closer, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return logr.Discard(), nopCloser{}, nil
	}
	std := log.New(io.Discard, "", log.LstdFlags|log.Lmicroseconds)
	f, err := tea.LogToFileWith(path, "studyplan", std)
	if err != nil {
		return logr.Discard(), nopCloser{}, err
	}
	stdr.SetVerbosity(verbosity)
	return stdr.NewWithOptions(std, stdr.Options{LogCaller: stdr.Error}), f, nil
}
