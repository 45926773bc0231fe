package notifier

import (
	"context"
	"log/slog"

	"github.com/amishk599/vacancywatch/internal/model"
)

// Ensure LogNotifier implements model.Notifier.
var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes new vacancies to the given logger as structured messages.
type LogNotifier struct {
	baseURL string
	logger  *slog.Logger
}

// NewLogNotifier returns a notifier that logs each vacancy via slog.
func NewLogNotifier(baseURL string, logger *slog.Logger) *LogNotifier {
	return &LogNotifier{baseURL: baseURL, logger: logger}
}

// Notify logs each vacancy ID with its detail link.
// Returns nil (stdout logging does not fail).
func (n *LogNotifier) Notify(_ context.Context, ids []string) error {
	for _, id := range ids {
		n.logger.Info("new vacancy", "id", id, "url", VacancyURL(n.baseURL, id))
	}
	return nil
}

// SendTestMessage sends a dummy vacancy notification to verify the integration works.
func SendTestMessage(ctx context.Context, n model.Notifier) error {
	return n.Notify(ctx, []string{"test-001"})
}
