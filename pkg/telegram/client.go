// Package telegram implements the transport session on the Telegram Bot API.
//
// Chat addresses reuse the bridge convention so the rest of the system can
// stay transport agnostic: groups are "<id>@g.us", everything else
// "<id>@c.us".
package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/onurcolak/digest-scheduler/internal/domain"
	"github.com/onurcolak/digest-scheduler/pkg/logger"
)

type Config struct {
	Token string
	// ChatIDs are the chats the bot reports on; the first one is the owner's
	// private chat and acts as "self".
	ChatIDs []int64
	// Endpoint overrides tgbotapi.APIEndpoint.
	Endpoint string
}

type Client struct {
	bot     *tgbotapi.BotAPI
	chatIDs []int64
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("telegram bot token is required")
	}
	if len(cfg.ChatIDs) == 0 {
		return nil, fmt.Errorf("at least one telegram chat id is required")
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}

	bot, err := tgbotapi.NewBotAPIWithAPIEndpoint(cfg.Token, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	logger.Infof("Authorized on Telegram as @%s", bot.Self.UserName)

	return &Client{bot: bot, chatIDs: cfg.ChatIDs}, nil
}

func (c *Client) SendMessage(ctx context.Context, to, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	chatID, err := parseAddress(to)
	if err != nil {
		return err
	}

	if _, err := c.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return fmt.Errorf("failed to send telegram message to %d: %w", chatID, err)
	}
	return nil
}

func (c *Client) ListChats(ctx context.Context) ([]domain.TransportChat, error) {
	chats := make([]domain.TransportChat, 0, len(c.chatIDs))
	for _, id := range c.chatIDs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		chat, err := c.bot.GetChat(tgbotapi.ChatInfoConfig{ChatConfig: tgbotapi.ChatConfig{ChatID: id}})
		if err != nil {
			return nil, fmt.Errorf("failed to get telegram chat %d: %w", id, err)
		}

		isGroup := chat.IsGroup() || chat.IsSuperGroup()
		chats = append(chats, domain.TransportChat{
			ID:          address(chat.ID, isGroup),
			DisplayName: displayName(chat),
			IsGroup:     isGroup,
		})
	}
	return chats, nil
}

func (c *Client) SelfID(ctx context.Context) (string, error) {
	return address(c.chatIDs[0], false), nil
}

func (c *Client) Logout(ctx context.Context) error {
	if _, err := c.bot.Request(tgbotapi.LogOutConfig{}); err != nil {
		return fmt.Errorf("failed to log out of telegram: %w", err)
	}
	return nil
}

// Reconnect verifies the token still authenticates.
func (c *Client) Reconnect(ctx context.Context) error {
	me, err := c.bot.GetMe()
	if err != nil {
		return fmt.Errorf("failed to reach telegram: %w", err)
	}
	c.bot.Self = me
	return nil
}

func address(id int64, group bool) string {
	if group {
		return strconv.FormatInt(id, 10) + domain.GroupChatSuffix
	}
	return strconv.FormatInt(id, 10) + domain.DirectChatSuffix
}

func parseAddress(to string) (int64, error) {
	raw, _, _ := strings.Cut(to, "@")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid telegram chat address %q", to)
	}
	return id, nil
}

func displayName(chat tgbotapi.Chat) string {
	if chat.Title != "" {
		return chat.Title
	}
	return strings.TrimSpace(chat.FirstName + " " + chat.LastName)
}
