package discord

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	crerr "github.com/cockroachdb/errors"

	"github.com/dangue13/rlvs-discord-bot/internal/usecase"
)

// SendView posts the view as an embed and returns the created message ID.
func (c *Connector) SendView(ctx context.Context, channelID string, view usecase.MessageView) (string, error) {
	msg, err := c.session.ChannelMessageSendEmbed(channelID, embedFromView(view), discordgo.WithContext(ctx))
	if err != nil {
		return "", crerr.Wrapf(err, "send embed to channel %s", channelID)
	}
	return msg.ID, nil
}

// EditView replaces the embed on an existing message.
func (c *Connector) EditView(ctx context.Context, channelID, messageID string, view usecase.MessageView) error {
	_, err := c.session.ChannelMessageEditEmbed(channelID, messageID, embedFromView(view), discordgo.WithContext(ctx))
	if err != nil {
		return crerr.Wrapf(err, "edit message %s in channel %s", messageID, channelID)
	}
	return nil
}

// SendText posts plain text and returns the created message ID.
func (c *Connector) SendText(ctx context.Context, channelID, content string) (string, error) {
	msg, err := c.session.ChannelMessageSend(channelID, content, discordgo.WithContext(ctx))
	if err != nil {
		return "", crerr.Wrapf(err, "send message to channel %s", channelID)
	}
	return msg.ID, nil
}

// ResolveRoleMention maps a role name to its mention token. Lookup failures
// degrade to no mention; announcements still go out without the ping.
func (c *Connector) ResolveRoleMention(ctx context.Context, guildID, roleName string) (string, bool) {
	if guildID == "" {
		return "", false
	}
	roles, err := c.guildRoles(ctx, guildID)
	if err != nil {
		c.logger.DebugContext(ctx, "role mention lookup failed", "guild_id", guildID, "role", roleName, "error", err)
		return "", false
	}
	return findRoleMention(roles, roleName)
}

func findRoleMention(roles []*discordgo.Role, name string) (string, bool) {
	want := strings.ToLower(strings.TrimSpace(name))
	if want == "" {
		return "", false
	}
	for _, role := range roles {
		if role != nil && strings.ToLower(role.Name) == want {
			return role.Mention(), true
		}
	}
	return "", false
}

func embedFromView(view usecase.MessageView) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       view.Title,
		Description: view.Description,
		URL:         view.URL,
		Color:       view.Color,
	}
	if view.Footer != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: view.Footer}
	}
	if !view.Timestamp.IsZero() {
		embed.Timestamp = view.Timestamp.UTC().Format(time.RFC3339)
	}
	return embed
}
