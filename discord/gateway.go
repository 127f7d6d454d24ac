// Copyright (c) 2026 Jonas Hartmann.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package discord

import (
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"github.com/jhartmann/clubplan/bot"
	"github.com/jhartmann/clubplan/chat"
	"github.com/jhartmann/clubplan/events"
)

// RegisterHandlers attaches the gateway event handlers that feed the core:
// scheduled-event lifecycle notifications into the syncer, component
// interactions into the bot router.
func RegisterHandlers(s *discordgo.Session, c *bot.Context) {
	s.AddHandler(func(_ *discordgo.Session, e *discordgo.GuildScheduledEventCreate) {
		if err := c.Events.HandleCreated(toNotification(e.GuildScheduledEvent)); err != nil {
			slog.Error("failed to handle event create", "event_id", e.ID, "error", err)
		}
	})
	s.AddHandler(func(_ *discordgo.Session, e *discordgo.GuildScheduledEventUpdate) {
		if err := c.Events.HandleUpdated(toNotification(e.GuildScheduledEvent)); err != nil {
			slog.Error("failed to handle event update", "event_id", e.ID, "error", err)
		}
	})
	s.AddHandler(func(_ *discordgo.Session, e *discordgo.GuildScheduledEventDelete) {
		if err := c.Events.HandleDeleted(e.ID); err != nil {
			slog.Error("failed to handle event delete", "event_id", e.ID, "error", err)
		}
	})
	s.AddHandler(func(sess *discordgo.Session, i *discordgo.InteractionCreate) {
		handleInteraction(sess, i, c)
	})
}

// SyncScheduledEvents lists the guild's scheduled events and reconciles
// them against the local store; called once after the gateway connects.
func SyncScheduledEvents(s *discordgo.Session, c *bot.Context, guildID string) error {
	list, err := s.GuildScheduledEvents(guildID, false)
	if err != nil {
		return err
	}
	ns := make([]events.Notification, 0, len(list))
	for _, ev := range list {
		ns = append(ns, toNotification(ev))
	}
	posted, err := c.Events.SyncAll(ns)
	if err != nil {
		return err
	}
	slog.Info("scheduled events synced", "guild_id", guildID, "total", len(ns), "posted", posted)
	return nil
}

func toNotification(ev *discordgo.GuildScheduledEvent) events.Notification {
	return events.Notification{
		EventID:     ev.ID,
		GuildID:     ev.GuildID,
		Name:        ev.Name,
		Description: ev.Description,
		StartTime:   ev.ScheduledStartTime,
	}
}

// handleInteraction converts the gateway interaction into the core's
// transport-neutral form, routes it, and replies ephemerally.
func handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate, c *bot.Context) {
	in := chat.Interaction{UserID: interactionUserID(i)}

	switch i.Type {
	case discordgo.InteractionMessageComponent:
		in.ComponentID = i.MessageComponentData().CustomID
	case discordgo.InteractionModalSubmit:
		data := i.ModalSubmitData()
		in.ComponentID = data.CustomID
		in.FormFields = modalFields(data)
	default:
		return
	}

	reply := c.HandleInteraction(in)
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: reply,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		slog.Error("failed to respond to interaction", "component_id", in.ComponentID, "error", err)
	}
}

func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

func modalFields(data discordgo.ModalSubmitInteractionData) map[string]string {
	fields := make(map[string]string)
	for _, row := range data.Components {
		ar, ok := row.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, comp := range ar.Components {
			if ti, ok := comp.(*discordgo.TextInput); ok {
				fields[ti.CustomID] = ti.Value
			}
		}
	}
	return fields
}
