package reminder

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/sandeepkv93/studyplan/internal/model"
)

// DesktopNotifier delivers a notification outside the terminal.
type DesktopNotifier interface {
	Send(model.Notification) error
	// Available reports whether Send can reach a notification daemon.
	Available() bool
}

type NoopNotifier struct{}

func (NoopNotifier) Send(model.Notification) error { return nil }
func (NoopNotifier) Available() bool               { return false }

type ExecNotifier struct {
	lookPath func(string) (string, error)
	run      func(name string, args ...string) error
}

func NewExecNotifier() ExecNotifier {
	return ExecNotifier{
		lookPath: exec.LookPath,
		run: func(name string, args ...string) error {
			return exec.Command(name, args...).Run()
		},
	}
}

func (n ExecNotifier) command(note model.Notification) (string, []string, bool) {
	switch runtime.GOOS {
	case "linux":
		return "notify-send", []string{"--app-name=studyplan", note.Title, note.Body}, true
	case "darwin":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`, escapeAppleScript(note.Body), escapeAppleScript(note.Title))
		return "osascript", []string{"-e", script}, true
	default:
		return "", nil, false
	}
}

func (n ExecNotifier) Available() bool {
	name, _, ok := n.command(model.Notification{})
	if !ok {
		return false
	}
	_, err := n.lookPath(name)
	return err == nil
}

func (n ExecNotifier) Send(note model.Notification) error {
	name, args, ok := n.command(note)
	if !ok {
		return nil
	}
	return n.run(name, args...)
}

func escapeAppleScript(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}
