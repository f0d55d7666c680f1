package telegram

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ContentGate/internal/domain"
	"ContentGate/internal/ports"
)

const defaultAPIBase = "https://api.telegram.org"

// Notifier posts failed verdicts to a Telegram chat via bot API.
type Notifier struct {
	apiBase  string
	botToken string
	chatID   string
	client   *http.Client
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier registers bot token and chat identifier.
func NewNotifier(botToken, chatID string) *Notifier {
	return &Notifier{
		apiBase:  defaultAPIBase,
		botToken: botToken,
		chatID:   chatID,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// PublishVerdict sends a message for failed verifications; passing verdicts
// are not worth a reviewer's attention and are skipped.
func (n *Notifier) PublishVerdict(ctx context.Context, item domain.ContentItem, record domain.VerificationRecord) error {
	if record.OverallPassed {
		return nil
	}
	if n.botToken == "" || n.chatID == "" || n.client == nil {
		return fmt.Errorf("telegram notifier misconfigured")
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", strings.TrimRight(n.apiBase, "/"), n.botToken)
	form := url.Values{}
	form.Set("chat_id", n.chatID)
	form.Set("text", FormatVerdict(item, record))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram error: %s", resp.Status)
	}

	return nil
}

// FormatVerdict renders a plain-text summary of a verification record.
func FormatVerdict(item domain.ContentItem, record domain.VerificationRecord) string {
	reasons := make([]string, 0, len(record.IssueReasons))
	for _, r := range record.IssueReasons {
		reasons = append(reasons, string(r))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Verification failed: %s\n", item.Title)
	fmt.Fprintf(&b, "Score: %d/100\n", record.OverallScore)
	if len(reasons) > 0 {
		fmt.Fprintf(&b, "Issues: %s\n", strings.Join(reasons, ", "))
	}
	if len(record.Checks.Links.Broken) > 0 {
		fmt.Fprintf(&b, "Broken links: %s\n", strings.Join(record.Checks.Links.Broken, " "))
	}
	if item.AssignedTo != "" {
		fmt.Fprintf(&b, "Assigned to: %s\n", item.AssignedTo)
	}
	return b.String()
}
