// Copyright (c) 2026 Jonas Hartmann.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package bot

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/jhartmann/clubplan/chat"
	"github.com/jhartmann/clubplan/events"
	"github.com/jhartmann/clubplan/models"
	"github.com/jhartmann/clubplan/poll"
)

// Component id scheme: "<verb>:<poll or event id>[:<arg>]". The platform
// layer stamps these onto buttons and form submissions and routes every
// interaction through HandleInteraction.
const (
	CompVote         = "poll_vote"      // poll_vote:<pollID>:<optionID>
	CompSlot         = "poll_slot"      // poll_slot:<pollID>:<slot>
	CompSubmitAvail  = "poll_submit"    // poll_submit:<pollID>
	CompClearAvail   = "poll_clear"     // poll_clear:<pollID>
	CompAddIdea      = "poll_idea"      // poll_idea:<pollID>; form: text, description
	CompDeleteOption = "poll_delidea"   // poll_delidea:<pollID>:<optionID>
	CompPickDays     = "poll_days"      // poll_days:<pollID>; form: dates (CSV)
	CompRSVP         = "event_rsvp"     // event_rsvp:<eventID>
	CompCreateEvent  = "event_create"   // event_create:<pollID>; form: title, start, ...
)

// HandleInteraction is the boundary for all button clicks and form
// submissions. It always produces a user-facing reply: taxonomy errors
// (authorization, malformed input) surface their message, anything
// unexpected is logged and answered generically so one failing interaction
// never takes other users down.
func (c *Context) HandleInteraction(in chat.Interaction) string {
	reply, err := c.route(in)
	if err == nil {
		return reply
	}

	if errors.Is(err, models.ErrNotAuthorized) || errors.Is(err, models.ErrInvalidInput) {
		return err.Error()
	}
	if errors.Is(err, models.ErrNotFound) {
		return "That no longer exists."
	}

	slog.Error("interaction failed", "component_id", in.ComponentID, "user_id", in.UserID, "error", err)
	return "Something went wrong, please try again."
}

func (c *Context) route(in chat.Interaction) (string, error) {
	verb, rest, _ := strings.Cut(in.ComponentID, ":")

	switch verb {
	case CompVote:
		pollID, optionID, err := splitIDArg(rest)
		if err != nil {
			return "", err
		}
		voted, err := c.Polls.ToggleVote(pollID, optionID, in.UserID)
		if err != nil {
			return "", err
		}
		c.refreshAfter(pollID)
		if voted {
			return "Vote saved.", nil
		}
		return "Vote removed.", nil

	case CompSlot:
		pollID, slot, ok := strings.Cut(rest, ":")
		if !ok {
			return "", fmt.Errorf("malformed component %q: %w", in.ComponentID, models.ErrInvalidInput)
		}
		if c.Polls.StageSlot(pollID, in.UserID, slot) {
			return fmt.Sprintf("%s selected. Press submit to save.", models.SlotLabel(slot)), nil
		}
		return fmt.Sprintf("%s deselected.", models.SlotLabel(slot)), nil

	case CompSubmitAvail:
		if err := c.Polls.SubmitAvailability(rest, in.UserID); err != nil {
			return "", err
		}
		c.refreshAfter(rest)
		return "Availability saved.", nil

	case CompClearAvail:
		if err := c.Polls.ClearAvailability(rest, in.UserID); err != nil {
			return "", err
		}
		c.refreshAfter(rest)
		return "Availability cleared.", nil

	case CompAddIdea:
		_, err := c.Polls.AddOption(rest, in.FormFields["text"], in.FormFields["description"], in.UserID)
		if err != nil {
			return "", err
		}
		c.refreshAfter(rest)
		return "Idea added.", nil

	case CompDeleteOption:
		pollID, optionID, err := splitIDArg(rest)
		if err != nil {
			return "", err
		}
		if err := c.Polls.DeleteOwnOption(pollID, optionID, in.UserID); err != nil {
			return "", err
		}
		c.refreshAfter(pollID)
		return "Idea deleted.", nil

	case CompPickDays:
		days, err := poll.ParseQuarterDays(in.FormFields["dates"])
		if err != nil {
			return "", err
		}
		if err := c.Polls.ReplaceAvailability(rest, in.UserID, days); err != nil {
			return "", err
		}
		c.refreshAfter(rest)
		return fmt.Sprintf("%d day(s) saved.", len(days)), nil

	case CompRSVP:
		interested, err := c.Events.ToggleRSVP(rest, in.UserID)
		if err != nil {
			return "", err
		}
		if interested {
			return "You are marked as interested.", nil
		}
		return "Your interest was removed.", nil

	case CompCreateEvent:
		ev, err := c.Events.CreateEvent(rest, eventInputFromForm(in.FormFields))
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Event %q created.", ev.Title), nil
	}

	return "", fmt.Errorf("unknown component %q: %w", in.ComponentID, models.ErrNotFound)
}

// refreshAfter updates the poll's live message after a mutation. Failures
// are logged only: the user's change is already persisted.
func (c *Context) refreshAfter(pollID string) {
	if err := c.RefreshPollMessage(pollID); err != nil {
		slog.Error("failed to refresh poll message", "poll_id", pollID, "error", err)
	}
}

func splitIDArg(rest string) (pollID string, optionID int64, err error) {
	pollID, arg, ok := strings.Cut(rest, ":")
	if !ok {
		return "", 0, fmt.Errorf("malformed component arg %q: %w", rest, models.ErrInvalidInput)
	}
	optionID, err = strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("malformed option id %q: %w", arg, models.ErrInvalidInput)
	}
	return pollID, optionID, nil
}

func eventInputFromForm(fields map[string]string) events.CreatedEventInput {
	return events.CreatedEventInput{
		Title:        fields["title"],
		Description:  fields["description"],
		StartTime:    fields["start"],
		EndTime:      fields["end"],
		Participants: fields["participants"],
		Location:     fields["location"],
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, models.ErrNotFound)
}
