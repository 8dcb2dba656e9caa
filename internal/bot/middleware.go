package bot

func (b *Bot) withRecovery(handler func()) {
	defer func() {
		if r := recover(); r != nil {
			if b.metrics != nil {
				b.metrics.ErrorsTotal.Inc()
			}
			b.logger.Error().Interface("panic", r).Msg("Recovered from panic in update handler")
		}
	}()
	handler()
}

func (b *Bot) isBlacklisted(userID int64) bool {
	return b.config.IsBlacklisted(userID)
}

// isHost reports whether the user may run host commands such as /export.
func (b *Bot) isHost(userID int64) bool {
	return b.config.IsHost(userID)
}
