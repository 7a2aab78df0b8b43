package utils

import (
	"os"
	"os/exec"
	"strconv"
)

// NotificationConfig controls desktop notifications.
type NotificationConfig struct {
	// Tool is "dunstify", "notify-send" or "auto".
	Tool    string
	Timeout int // milliseconds
	Urgency string
}

// DefaultNotificationConfig picks the first available tool.
func DefaultNotificationConfig() NotificationConfig {
	return NotificationConfig{
		Tool:    "auto",
		Timeout: 5000,
		Urgency: "normal",
	}
}

// NotificationCommand returns the command sending a desktop notification, or
// nil when no notification tool is available.
func NotificationCommand(cfg NotificationConfig, title, message string) *exec.Cmd {
	tool := cfg.Tool
	if tool == "" || tool == "auto" {
		tool = detectNotificationTool()
	}

	urgency := cfg.Urgency
	if urgency == "" {
		urgency = "normal"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5000
	}

	switch tool {
	case "dunstify", "notify-send":
		cmd := exec.Command(tool,
			"-u", urgency,
			"-t", strconv.Itoa(timeout),
			title,
			message)
		cmd.Env = os.Environ()
		return cmd
	default:
		return nil
	}
}

// Notify sends a desktop notification in the background. It does nothing
// when no notification tool is installed.
func Notify(cfg NotificationConfig, title, message string) error {
	cmd := NotificationCommand(cfg, title, message)
	if cmd == nil {
		return nil
	}
	return cmd.Start()
}

// detectNotificationTool detects which notification tool is available
func detectNotificationTool() string {
	if CommandExists("dunstify") {
		return "dunstify"
	}
	if CommandExists("notify-send") {
		return "notify-send"
	}
	return ""
}
