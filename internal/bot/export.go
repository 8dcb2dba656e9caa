package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"venuebook/internal/export"
	"venuebook/internal/models"
)

const exportUsage = "Usage: /export [from YYYY-MM-DD] [to YYYY-MM-DD] [venue_id]"

// handleExport sends hosts an xlsx of booking requests. Arguments are
// optional: "/export 2025-11-01 2025-11-30 hall".
func (b *Bot) handleExport(ctx context.Context, chatID, userID int64, args string) {
	if !b.isHost(userID) {
		b.sendMessage(chatID, msgNotHost)
		return
	}

	from, to, venueID, err := parseExportArgs(args)
	if err != nil {
		b.sendMessage(chatID, "⚠️ "+err.Error()+"\n"+exportUsage)
		return
	}

	data, err := b.backend.ExportBookings(ctx, venueID, from, to)
	if err != nil {
		b.logger.Error().Err(err).Msg("Export failed")
		b.sendMessage(chatID, b.getErrorMessage(err))
		return
	}

	name := export.FileName(from, to)
	caption := "📊 Booking requests"
	if !from.IsZero() || !to.IsZero() {
		caption += fmt.Sprintf(" %s to %s", dateOrOpen(from), dateOrOpen(to))
	}
	if _, err := b.tgService.SendDocument(chatID, name, data, caption); err != nil {
		b.logger.Error().Err(err).Str("file", name).Msg("Failed to send export")
		b.sendMessage(chatID, msgGenericError)
		return
	}
	if b.metrics != nil {
		b.metrics.ExportsSent.Inc()
	}
	b.logger.Info().Int64("user_id", userID).Str("file", name).Int("bytes", len(data)).Msg("Export sent")
}

func parseExportArgs(args string) (from, to time.Time, venueID string, err error) {
	fields := strings.Fields(args)
	if len(fields) > 3 {
		return from, to, "", fmt.Errorf("too many arguments")
	}
	if len(fields) > 0 {
		if from, err = models.ParseDate(fields[0]); err != nil {
			return from, to, "", fmt.Errorf("invalid from date %q", fields[0])
		}
	}
	if len(fields) > 1 {
		if to, err = models.ParseDate(fields[1]); err != nil {
			return from, to, "", fmt.Errorf("invalid to date %q", fields[1])
		}
		if to.Before(from) {
			return from, to, "", fmt.Errorf("to is before from")
		}
	}
	if len(fields) > 2 {
		venueID = fields[2]
	}
	return from, to, venueID, nil
}

func dateOrOpen(t time.Time) string {
	if t.IsZero() {
		return "…"
	}
	return models.FormatDate(t)
}
