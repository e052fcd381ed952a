package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf16"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// MaxMessageLength is the Bot API limit for one text message.
const MaxMessageLength = 4096

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Client posts plain text messages to a single chat.
type Client struct {
	bot    sender
	chatID int64
}

func NewClient(token string, chatID int64) (*Client, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to connect telegram bot: %w", err)
	}

	return &Client{
		bot:    bot,
		chatID: chatID,
	}, nil
}

// Send implements notification.Sink.
func (c *Client) Send(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var errs []error
	for _, part := range splitMessage(text, MaxMessageLength) {
		msg := tgbotapi.NewMessage(c.chatID, part)
		msg.DisableWebPagePreview = true
		if _, err := c.bot.Send(msg); err != nil {
			errs = append(errs, fmt.Errorf("failed to send telegram message: %w", err))
		}
	}
	return errors.Join(errs...)
}

// splitMessage cuts text into parts of at most limit UTF-16 units, preferring
// paragraph and then line boundaries.
func splitMessage(text string, limit int) []string {
	if textLength(text) <= limit {
		return []string{text}
	}

	var parts []string
	var current strings.Builder
	currentLen := 0
	flush := func() {
		if currentLen > 0 {
			parts = append(parts, current.String())
			current.Reset()
			currentLen = 0
		}
	}
	add := func(piece, sep string) {
		n := textLength(piece)
		if currentLen > 0 && currentLen+textLength(sep)+n > limit {
			flush()
		}
		if currentLen > 0 {
			current.WriteString(sep)
			currentLen += textLength(sep)
		}
		current.WriteString(piece)
		currentLen += n
	}

	for _, paragraph := range strings.Split(text, "\n\n") {
		if textLength(paragraph) <= limit {
			add(paragraph, "\n\n")
			continue
		}
		flush()
		for _, line := range strings.Split(paragraph, "\n") {
			for _, chunk := range hardSplit(line, limit) {
				add(chunk, "\n")
			}
		}
		flush()
	}
	flush()
	return parts
}

func hardSplit(s string, limit int) []string {
	if textLength(s) <= limit {
		return []string{s}
	}
	var chunks []string
	start, n := 0, 0
	for i, r := range s {
		w := utf16.RuneLen(r)
		if w < 0 {
			w = 1
		}
		if n+w > limit {
			chunks = append(chunks, s[start:i])
			start, n = i, 0
		}
		n += w
	}
	return append(chunks, s[start:])
}

func textLength(s string) int {
	n := 0
	for _, r := range s {
		if w := utf16.RuneLen(r); w > 0 {
			n += w
		} else {
			n++
		}
	}
	return n
}
