package ui

import (
	"fmt"
	"os/exec"
	"runtime"
)

// NotificationSender delivers one desktop notification. A multi-hour
// scrape mostly runs unattended; auth expiry and network loss need to
// reach the user even when the terminal is buried.
type NotificationSender interface {
	Send(title, message string) error
}

type linuxSender struct{}

func (linuxSender) Send(title, message string) error {
	return exec.Command("notify-send", title, message).Run()
}

type macSender struct{}

func (macSender) Send(title, message string) error {
	script := fmt.Sprintf(`display notification "%s" with title "%s"`, message, title)
	return exec.Command("osascript", "-e", script).Run()
}

type windowsSender struct{}

func (windowsSender) Send(title, message string) error {
	script := fmt.Sprintf(`
		[Windows.UI.Notifications.ToastNotificationManager, Windows.UI.Notifications, ContentType = WindowsRuntime] | Out-Null
		[Windows.Data.Xml.Dom.XmlDocument, Windows.Data.Xml.Dom.XmlDocument, ContentType = WindowsRuntime] | Out-Null
		$xml = @"
<toast>
	<visual>
		<binding template="ToastText02">
			<text id="1">%s</text>
			<text id="2">%s</text>
		</binding>
	</visual>
</toast>
"@
		$doc = [Windows.Data.Xml.Dom.XmlDocument]::new()
		$doc.LoadXml($xml)
		$toast = [Windows.UI.Notifications.ToastNotification]::new($doc)
		[Windows.UI.Notifications.ToastNotificationManager]::CreateToastNotifier("xscraper").Show($toast)
	`, title, message)

	return exec.Command("powershell", "-NoProfile", "-NonInteractive", "-Command", script).Run()
}

// senderFor picks the notification mechanism for an OS; nil means the
// platform has no supported desktop notifications and only the console
// line is printed.
func senderFor(goos string) NotificationSender {
	switch goos {
	case "linux":
		return linuxSender{}
	case "darwin":
		return macSender{}
	case "windows":
		return windowsSender{}
	default:
		return nil
	}
}

// Notifier mirrors every notification to the console and, where the
// platform supports it, to a desktop notification. Delivery failures
// are ignored; a lost toast must never interrupt a scrape.
type Notifier struct {
	sender NotificationSender
}

// NewNotifier creates a Notifier for the current platform.
func NewNotifier() *Notifier {
	return &Notifier{sender: senderFor(runtime.GOOS)}
}

// SendNotification reports a neutral event.
func (n *Notifier) SendNotification(title, message string) {
	n.send(fmt.Sprintf("\n%s: %s\n", Cyan(title), Yellow(message)), title, message)
}

// SendError reports a condition that needs the user's attention.
func (n *Notifier) SendError(title, message string) {
	n.send(fmt.Sprintf("\n%s: %s\n", Red(title), Red(message)), title, message)
}

// SendSuccess reports a completed milestone.
func (n *Notifier) SendSuccess(title, message string) {
	n.send(fmt.Sprintf("\n%s: %s\n", Green(title), Green(message)), title, message)
}

func (n *Notifier) send(console, title, message string) {
	fmt.Print(console)
	if n.sender != nil {
		_ = n.sender.Send(title, message)
	}
}
