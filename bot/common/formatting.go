package common

import (
	"fmt"
	"strings"
	"time"

	"wagerbot/models"
)

// FormatBalance formats a balance amount with thousand separators
func FormatBalance(balance int64) string {
	sign := ""
	if balance < 0 {
		sign = "-"
		balance = -balance
	}
	str := fmt.Sprintf("%d", balance)

	n := len(str)
	if n <= 3 {
		return sign + str
	}

	var result strings.Builder
	result.WriteString(sign)
	for i, digit := range str {
		if i > 0 && (n-i)%3 == 0 {
			result.WriteRune(',')
		}
		result.WriteRune(digit)
	}

	return result.String()
}

// FormatSignedBalance formats a ledger delta with an explicit sign
func FormatSignedBalance(delta int64) string {
	if delta > 0 {
		return "+" + FormatBalance(delta)
	}
	return FormatBalance(delta)
}

// FormatTransferResult formats the result of a gift
func FormatTransferResult(amount int64, recipientID string, newBalance int64) string {
	return fmt.Sprintf("🎁 gifted **%s bits** to <@%s>. Your balance: **%s bits**",
		FormatBalance(amount), recipientID, FormatBalance(newBalance))
}

// FormatOutcome renders a game outcome headline
func FormatOutcome(outcome models.Outcome) string {
	switch outcome {
	case models.OutcomeWin:
		return "🎉 **You won!**"
	case models.OutcomeLoss:
		return "😔 **You lost!**"
	case models.OutcomePush:
		return "🤝 **Push.** Your bet is returned."
	default:
		return "⏳ **In progress**"
	}
}

// FormatHand renders a blackjack hand, hiding the total when masked
func FormatHand(hand *models.HandView) string {
	if hand == nil {
		return "-"
	}
	cards := strings.Join(hand.Cards, " ")
	if hand.Masked {
		return cards
	}
	return fmt.Sprintf("%s (**%d**)", cards, hand.Total)
}

// FormatDiscordTimestamp formats a time as a Discord timestamp that displays in user's local timezone
// Format types: "t" = short time, "T" = long time, "d" = short date, "D" = long date,
// "f" = short date/time, "F" = long date/time, "R" = relative time
func FormatDiscordTimestamp(t time.Time, format string) string {
	return fmt.Sprintf("<t:%d:%s>", t.Unix(), format)
}
