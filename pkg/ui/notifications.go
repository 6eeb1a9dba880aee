package ui

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"gigslides/internal/apiclient"
	"gigslides/pkg/config"
	"gigslides/pkg/logger"
)

// NotificationSender interface for platform-specific notification implementations
type NotificationSender interface {
	Send(title, message string) error
}

// LinuxNotificationSender sends notifications on Linux using notify-send
type LinuxNotificationSender struct{}

func (l *LinuxNotificationSender) Send(title, message string) error {
	return exec.Command("notify-send", title, message).Run()
}

// MacOSNotificationSender sends notifications on macOS using osascript
type MacOSNotificationSender struct{}

func (m *MacOSNotificationSender) Send(title, message string) error {
	script := fmt.Sprintf(`display notification %q with title %q`, message, title)
	return exec.Command("osascript", "-e", script).Run()
}

// WindowsNotificationSender sends notifications on Windows using PowerShell
type WindowsNotificationSender struct{}

func (w *WindowsNotificationSender) Send(title, message string) error {
	escape := func(s string) string { return strings.ReplaceAll(s, "'", "''") }
	script := fmt.Sprintf(`
		[Windows.UI.Notifications.ToastNotificationManager, Windows.UI.Notifications, ContentType = WindowsRuntime] | Out-Null
		$template = [Windows.UI.Notifications.ToastNotificationManager]::GetTemplateContent([Windows.UI.Notifications.ToastTemplateType]::ToastText02)
		$text = $template.GetElementsByTagName('text')
		$text.Item(0).AppendChild($template.CreateTextNode('%s')) | Out-Null
		$text.Item(1).AppendChild($template.CreateTextNode('%s')) | Out-Null
		$toast = [Windows.UI.Notifications.ToastNotification]::new($template)
		[Windows.UI.Notifications.ToastNotificationManager]::CreateToastNotifier('gigslides').Show($toast)
	`, escape(title), escape(message))
	return exec.Command("powershell", "-NoProfile", "-NonInteractive", "-Command", script).Run()
}

// desktopSender returns the sender for the current platform, or nil
func desktopSender() NotificationSender {
	switch runtime.GOOS {
	case "linux":
		return &LinuxNotificationSender{}
	case "darwin":
		return &MacOSNotificationSender{}
	case "windows":
		return &WindowsNotificationSender{}
	default:
		return nil
	}
}

// SlackSender posts to a Slack incoming webhook
type SlackSender struct {
	api        *apiclient.Client
	webhookURL string
	timeout    time.Duration
}

// NewSlackSender creates a webhook sender
func NewSlackSender(webhookURL string, log logger.Logger) *SlackSender {
	return &SlackSender{
		api:        apiclient.New(10*time.Second, log),
		webhookURL: webhookURL,
		timeout:    10 * time.Second,
	}
}

type slackMessage struct {
	Text string `json:"text"`
}

func (s *SlackSender) Send(title, message string) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	// Slack answers with a plain "ok", so the body is not decoded
	return s.api.SendJSON(ctx, http.MethodPost, s.webhookURL, slackMessage{Text: "*" + title + "*\n" + message}, nil)
}

// Notifier prints to the console and forwards to the configured senders
type Notifier struct {
	senders []NotificationSender
	logger  logger.Logger
}

// NewNotifier builds a notifier from the notification settings
func NewNotifier(cfg config.NotificationConfig, log logger.Logger) *Notifier {
	if log == nil {
		log = logger.GetLogger()
	}
	n := &Notifier{logger: log.WithField("component", "notifier")}
	if !cfg.Enabled {
		return n
	}
	if cfg.Desktop {
		if s := desktopSender(); s != nil {
			n.senders = append(n.senders, s)
		}
	}
	if cfg.SlackWebhookURL != "" {
		n.senders = append(n.senders, NewSlackSender(cfg.SlackWebhookURL, log))
	}
	return n
}

// NewNotifierWithSenders is used by tests and callers with custom senders
func NewNotifierWithSenders(log logger.Logger, senders ...NotificationSender) *Notifier {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Notifier{senders: senders, logger: log}
}

func (n *Notifier) forward(title, message string) error {
	var errs []error
	for _, s := range n.senders {
		if err := s.Send(title, message); err != nil {
			n.logger.WarnWithFields("notification failed", map[string]interface{}{
				"sender": fmt.Sprintf("%T", s),
				"error":  err.Error(),
			})
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SendNotification prints an informational message and forwards it
func (n *Notifier) SendNotification(title, message string) error {
	fmt.Fprintf(Output, "\n%s: %s\n", Cyan(title), Yellow(message))
	return n.forward(title, message)
}

// SendError prints an error message and forwards it
func (n *Notifier) SendError(title, message string) error {
	fmt.Fprintf(Output, "\n%s: %s\n", Red(title), Red(message))
	return n.forward(title, message)
}

// SendSuccess prints a success message and forwards it
func (n *Notifier) SendSuccess(title, message string) error {
	fmt.Fprintf(Output, "\n%s: %s\n", Green(title), Green(message))
	return n.forward(title, message)
}
