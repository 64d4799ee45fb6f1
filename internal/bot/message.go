package bot

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/roach88/spendlog/internal/menu"
)

// buttonsPerRow keeps category names readable on narrow phone screens.
const buttonsPerRow = 2

// splitAmountArgs splits "12.50 coffee with milk" into the amount text
// and the free-form note. ok is false when the input is blank.
func splitAmountArgs(args string) (amountStr, note string, ok bool) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return "", "", false
	}
	return fields[0], strings.Join(fields[1:], " "), true
}

// keyboard lays the menu options out in rows of two buttons. Button
// labels show the category, callback data carries the opaque token.
func keyboard(options []menu.Option) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for start := 0; start < len(options); start += buttonsPerRow {
		end := start + buttonsPerRow
		if end > len(options) {
			end = len(options)
		}
		var row []tgbotapi.InlineKeyboardButton
		for _, opt := range options[start:end] {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(opt.Choice.Category, opt.Token))
		}
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func confirmation(choice menu.Choice) string {
	text := fmt.Sprintf("Added: %s %s", choice.Category, choice.Amount.Major())
	if choice.Note != "" {
		text += " (" + choice.Note + ")"
	}
	return text
}

func username(user *tgbotapi.User) string {
	if user == nil || user.UserName == "" {
		return "unknown"
	}
	return user.UserName
}
