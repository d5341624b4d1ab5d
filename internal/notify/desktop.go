package notify

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// Disabled never delivers, so every reminder takes the in-app fallback.
type Disabled struct{}

func (Disabled) Deliver(string, string, bool) bool { return false }

type commandRunner func(name string, args ...string) error

// ExecDeliverer shows reminders through notify-send on Linux and
// osascript on macOS. Other platforms are unsupported and report false.
type ExecDeliverer struct {
	goos string
	run  commandRunner
}

func NewExecDeliverer() *ExecDeliverer {
	return &ExecDeliverer{
		goos: runtime.GOOS,
		run: func(name string, args ...string) error {
			return exec.Command(name, args...).Run()
		},
	}
}

func (d *ExecDeliverer) Deliver(title, body string, urgent bool) bool {
	switch d.goos {
	case "linux":
		urgency := "normal"
		if urgent {
			urgency = "critical"
		}
		return d.run("notify-send", "--urgency="+urgency, title, body) == nil
	case "darwin":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`, escapeAppleScript(body), escapeAppleScript(title))
		return d.run("osascript", "-e", script) == nil
	default:
		return false
	}
}

func escapeAppleScript(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, `\`, `\\`), `"`, `\"`)
}
