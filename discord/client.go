// Copyright (c) 2026 Jonas Hartmann.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package discord

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/bwmarrin/discordgo"

	"github.com/jhartmann/clubplan/chat"
)

// Client implements chat.Client over the Discord REST API. Messages map to
// a single embed; unknown-message and unknown-channel REST errors map to
// chat.ErrNotFound so the core's self-healing paths work.
type Client struct {
	s *discordgo.Session
}

func NewClient(s *discordgo.Session) *Client {
	return &Client{s: s}
}

func (c *Client) SendMessage(channelID string, msg chat.Message) (string, error) {
	m, err := c.s.ChannelMessageSendEmbed(channelID, toEmbed(msg))
	if err != nil {
		return "", wrapErr(err)
	}
	return m.ID, nil
}

func (c *Client) EditMessage(channelID, messageID string, msg chat.Message) error {
	_, err := c.s.ChannelMessageEditEmbed(channelID, messageID, toEmbed(msg))
	return wrapErr(err)
}

func (c *Client) DeleteMessage(channelID, messageID string) error {
	return wrapErr(c.s.ChannelMessageDelete(channelID, messageID))
}

func (c *Client) FetchMessage(channelID, messageID string) (chat.Message, error) {
	m, err := c.s.ChannelMessage(channelID, messageID)
	if err != nil {
		return chat.Message{}, wrapErr(err)
	}
	return fromMessage(m), nil
}

func toEmbed(msg chat.Message) *discordgo.MessageEmbed {
	e := &discordgo.MessageEmbed{
		Title:       msg.Title,
		Description: msg.Description,
	}
	for _, f := range msg.Fields {
		e.Fields = append(e.Fields, &discordgo.MessageEmbedField{
			Name:  f.Name,
			Value: f.Value,
		})
	}
	return e
}

func fromMessage(m *discordgo.Message) chat.Message {
	var msg chat.Message
	if len(m.Embeds) > 0 {
		e := m.Embeds[0]
		msg.Title = e.Title
		msg.Description = e.Description
		for _, f := range e.Fields {
			msg.Fields = append(msg.Fields, chat.Field{Name: f.Name, Value: f.Value})
		}
	} else {
		msg.Description = m.Content
	}
	return msg
}

// wrapErr translates discordgo REST errors into the core's taxonomy.
// 404s and the unknown-message/channel error codes become chat.ErrNotFound.
func wrapErr(err error) error {
	if err == nil {
		return nil
	}
	var rest *discordgo.RESTError
	if errors.As(err, &rest) {
		if rest.Response != nil && rest.Response.StatusCode == http.StatusNotFound {
			return fmt.Errorf("%w: %v", chat.ErrNotFound, err)
		}
		if rest.Message != nil {
			switch rest.Message.Code {
			case discordgo.ErrCodeUnknownMessage, discordgo.ErrCodeUnknownChannel:
				return fmt.Errorf("%w: %v", chat.ErrNotFound, err)
			}
		}
	}
	return err
}
