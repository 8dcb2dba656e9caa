package bot

import (
	"context"
	"fmt"
	"strings"

	"venuebook/internal/models"
	"venuebook/internal/pricing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const defaultPaginationSize = 6

type PaginationParams struct {
	Ctx          context.Context
	ChatID       int64
	MessageID    int // 0 if new message
	Page         int
	Title        string
	ItemPrefix   string
	PagePrefix   string
	BackCallback string
}

// renderPaginatedList - универсальная функция для отрисовки пагинированного списка
func (b *Bot) renderPaginatedList(params PaginationParams, totalCount int, itemsPerPage int, renderer func(startIdx, endIdx int) (string, [][]tgbotapi.InlineKeyboardButton)) {
	if itemsPerPage <= 0 {
		itemsPerPage = b.config.Bot.PaginationSize
	}
	if itemsPerPage <= 0 {
		itemsPerPage = defaultPaginationSize
	}
	if params.Page < 0 {
		params.Page = 0
	}

	totalPages := (totalCount + itemsPerPage - 1) / itemsPerPage
	if params.Page >= totalPages && totalPages > 0 {
		params.Page = totalPages - 1
	}

	startIdx := params.Page * itemsPerPage
	endIdx := startIdx + itemsPerPage
	if endIdx > totalCount {
		endIdx = totalCount
	}

	content, keyboard := renderer(startIdx, endIdx)

	var message strings.Builder
	message.WriteString(fmt.Sprintf("%s\n\n", params.Title))
	if totalPages > 1 {
		message.WriteString(fmt.Sprintf("Page %d of %d\n\n", params.Page+1, totalPages))
	}
	message.WriteString(content)

	// Добавляем навигационные кнопки
	var navButtons []tgbotapi.InlineKeyboardButton
	if params.Page > 0 {
		navButtons = append(navButtons, tgbotapi.NewInlineKeyboardButtonData("⬅️ Back", fmt.Sprintf("%s%d", params.PagePrefix, params.Page-1)))
	}
	if endIdx < totalCount {
		navButtons = append(navButtons, tgbotapi.NewInlineKeyboardButtonData("Next ➡️", fmt.Sprintf("%s%d", params.PagePrefix, params.Page+1)))
	}
	if len(navButtons) > 0 {
		keyboard = append(keyboard, navButtons)
	}

	if params.BackCallback != "" {
		keyboard = append(keyboard, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData("⬅️ Main menu", params.BackCallback),
		})
	}

	markup := tgbotapi.NewInlineKeyboardMarkup(keyboard...)

	if params.MessageID != 0 {
		if _, err := b.tgService.EditMessage(params.ChatID, params.MessageID, message.String(), &markup); err != nil {
			b.logger.Error().Err(err).Msg("Failed to edit paginated list")
		}
		return
	}
	if _, err := b.tgService.SendWithInlineKeyboard(params.ChatID, message.String(), markup); err != nil {
		b.logger.Error().Err(err).Msg("Failed to send paginated list")
	}
}

// renderVenueList - список площадок с кнопками выбора
func (b *Bot) renderVenueList(params PaginationParams) {
	venues, err := b.backend.ListVenues(params.Ctx, "")
	if err != nil {
		b.logger.Error().Err(err).Msg("Error getting venues for pagination")
		b.sendMessage(params.ChatID, b.getErrorMessage(err))
		return
	}
	if len(venues) == 0 {
		b.sendMessage(params.ChatID, "No venues are available right now.")
		return
	}

	b.renderPaginatedList(params, len(venues), 0, func(startIdx, endIdx int) (string, [][]tgbotapi.InlineKeyboardButton) {
		var content strings.Builder
		var keyboard [][]tgbotapi.InlineKeyboardButton

		for i, venue := range venues[startIdx:endIdx] {
			content.WriteString(fmt.Sprintf("%d. *%s*\n", startIdx+i+1, escape(venue.Name)))
			if venue.Location != "" {
				content.WriteString(fmt.Sprintf("   📍 %s\n", escape(venue.Location)))
			}
			content.WriteString(fmt.Sprintf("   💰 %s\n", priceLine(venue)))
			if venue.Capacity > 0 {
				content.WriteString(fmt.Sprintf("   👥 up to %d guests\n", venue.Capacity))
			}
			content.WriteString("\n")

			keyboard = append(keyboard, []tgbotapi.InlineKeyboardButton{
				tgbotapi.NewInlineKeyboardButtonData(venue.Name, params.ItemPrefix+venue.ID),
			})
		}
		return content.String(), keyboard
	})
}

// priceLine describes the venue's price model in one line.
func priceLine(v *models.Venue) string {
	p := v.Pricing()
	switch p.Model {
	case models.PriceModelFixed:
		return pricing.FormatCurrency(p.FixedPrice) + " per booking"
	case models.PriceModelQuoteOnly:
		return "price on request"
	default:
		return pricing.FormatCurrency(p.PricePerHour) + " per hour"
	}
}

func escape(s string) string {
	return tgbotapi.EscapeText(models.ParseModeMarkdown, s)
}
