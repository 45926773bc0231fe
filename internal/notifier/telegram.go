package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/amishk599/vacancywatch/internal/model"
)

// Ensure TelegramNotifier implements model.Notifier.
var _ model.Notifier = (*TelegramNotifier)(nil)

// TelegramNotifier posts one message per batch of new vacancies through the
// Bot API sendMessage method.
type TelegramNotifier struct {
	apiURL     string
	token      string
	chatID     string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewTelegramNotifier returns a notifier for the given bot and chat. apiURL is
// normally https://api.telegram.org; baseURL prefixes each vacancy ID to form
// its detail link.
func NewTelegramNotifier(apiURL, token, chatID, baseURL string, httpClient *http.Client, logger *slog.Logger) *TelegramNotifier {
	return &TelegramNotifier{
		apiURL:     strings.TrimRight(apiURL, "/"),
		token:      token,
		chatID:     chatID,
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type telegramResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
}

// Notify sends a single message listing every id. A non-2xx status or a
// response with ok=false is returned as *model.NotifyError.
func (n *TelegramNotifier) Notify(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	body, err := json.Marshal(sendMessageRequest{
		ChatID:                n.chatID,
		Text:                  buildMessage(ids, n.baseURL),
		ParseMode:             "Markdown",
		DisableWebPagePreview: true,
	})
	if err != nil {
		return &model.NotifyError{Err: fmt.Errorf("marshal telegram payload: %w", err)}
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.apiURL, n.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return &model.NotifyError{Err: fmt.Errorf("build telegram request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		// The URL embeds the bot token; keep it out of logs.
		return &model.NotifyError{Err: fmt.Errorf("post to telegram: %w", redact(err, n.token))}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var parsed telegramResponse
	_ = json.Unmarshal(raw, &parsed)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !parsed.OK {
		desc := parsed.Description
		if desc == "" {
			desc = strings.TrimSpace(string(raw))
		}
		return &model.NotifyError{StatusCode: resp.StatusCode, Description: desc}
	}

	n.logger.Info("telegram message sent", "vacancies", len(ids))
	return nil
}

// buildMessage renders the alert text in Telegram's legacy Markdown.
func buildMessage(ids []string, baseURL string) string {
	var b strings.Builder
	b.WriteString("🆕 New Vacancies Found:\n\n")
	for _, id := range ids {
		fmt.Fprintf(&b, "🔹 Vacancy ID: %s\n", escapeMarkdown(id))
		fmt.Fprintf(&b, "🔗 [View Vacancy](%s)\n\n", VacancyURL(baseURL, id))
	}
	return b.String()
}

// VacancyURL returns the detail page link for id. The id is path-escaped so
// characters such as ")" cannot end a Markdown link early.
func VacancyURL(baseURL, id string) string {
	return baseURL + url.PathEscape(id)
}

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

func redact(err error, secret string) error {
	if secret == "" {
		return err
	}
	return fmt.Errorf("%s", strings.ReplaceAll(err.Error(), secret, "<redacted>"))
}
