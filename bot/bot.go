// Copyright (c) 2026 Jonas Hartmann.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package bot

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jhartmann/clubplan/chat"
	"github.com/jhartmann/clubplan/cliparse"
	"github.com/jhartmann/clubplan/events"
	"github.com/jhartmann/clubplan/models"
	"github.com/jhartmann/clubplan/poll"
	"github.com/jhartmann/clubplan/schedule"
	"github.com/jhartmann/clubplan/summary"
)

// Context is the dependency container passed into every handler: store
// handle, scheduler, chat client, and the component managers. Constructed
// once at process start; nothing in the codebase reaches for package-level
// singletons.
type Context struct {
	Cfg    cliparse.Config
	DB     *sql.DB
	Chat   chat.Client
	Sched  *schedule.Scheduler
	Loc    *time.Location
	Polls  *poll.Manager
	Events *events.Syncer
	Digest *summary.Digest

	now func() time.Time
}

// New wires the component graph.
func New(cfg cliparse.Config, db *sql.DB, client chat.Client) (*Context, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	sched := schedule.New(loc)
	return &Context{
		Cfg:    cfg,
		DB:     db,
		Chat:   client,
		Sched:  sched,
		Loc:    loc,
		Polls:  poll.NewManager(db),
		Events: events.NewSyncer(db, client, sched, cfg.EventsChannelID, loc),
		Digest: summary.NewDigest(db, client, cfg.PollChannelID),
		now:    time.Now,
	}, nil
}

// RegisterJobs installs the recurring jobs: weekly poll on Sunday 12:00,
// digest at 09:00 and 18:00, quarterly check at 08:00, all in the display
// timezone. Channels left unconfigured simply get no job.
func (c *Context) RegisterJobs() error {
	if c.Cfg.PollChannelID != "" {
		if err := c.Sched.AddCron("0 12 * * 0", c.logged("weekly poll", c.PostWeeklyPoll)); err != nil {
			return err
		}
		for _, spec := range []string{"0 9 * * *", "0 18 * * *"} {
			if err := c.Sched.AddCron(spec, c.logged("digest", c.PostDigest)); err != nil {
				return err
			}
		}
	}
	if c.Cfg.QuarterChannelID != "" {
		if err := c.Sched.AddCron("0 8 * * *", c.logged("quarterly check", c.PostQuarterlyPollIfDue)); err != nil {
			return err
		}
	}
	return nil
}

// logged wraps a job so that one failing run never takes the scheduler
// down with it.
func (c *Context) logged(name string, job func() error) func() {
	return func() {
		if err := job(); err != nil {
			slog.Error("scheduled job failed", "job", name, "error", err)
		}
	}
}

// PostWeeklyPoll creates a fresh weekly poll and posts it to the poll
// channel, recording the message reference on the poll row.
func (c *Context) PostWeeklyPoll() error {
	pollID, err := c.Polls.CreateWeeklyPoll()
	if err != nil {
		return err
	}
	return c.postPoll(pollID, c.Cfg.PollChannelID)
}

// PostQuarterlyPollIfDue posts the quarterly poll when today is one week
// before a quarter start and the poll does not exist yet.
func (c *Context) PostQuarterlyPollIfDue() error {
	start, due := poll.DueQuarterStart(c.now().In(c.Loc))
	if !due {
		return nil
	}

	pollID, created, err := c.Polls.CreateQuarterlyPoll(start)
	if err != nil {
		return err
	}
	if !created {
		return nil
	}
	return c.postPoll(pollID, c.Cfg.QuarterChannelID)
}

func (c *Context) postPoll(pollID, channelID string) error {
	view, err := c.Polls.Render(pollID)
	if err != nil {
		return err
	}
	messageID, err := c.Chat.SendMessage(channelID, view.ChatMessage())
	if err != nil {
		return fmt.Errorf("failed to post poll %s: %w", pollID, err)
	}
	return c.Polls.SetPostedMessage(pollID, channelID, messageID)
}

// PostDigest posts the match digest for the current weekly poll. No poll
// yet means nothing to digest.
func (c *Context) PostDigest() error {
	p, err := c.Polls.CurrentPoll(models.KindWeekly)
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return err
	}
	_, err = c.Digest.Post(p.ID)
	return err
}

// RefreshPollMessage re-renders the poll's live message in place, with the
// same fetch-before-trust self-healing as event announcements.
func (c *Context) RefreshPollMessage(pollID string) error {
	p, err := c.Polls.GetPoll(pollID)
	if err != nil {
		return err
	}
	if p.PostedMessageID == "" {
		return nil
	}

	if _, err := c.Chat.FetchMessage(p.PostedChannelID, p.PostedMessageID); err != nil {
		if errors.Is(err, chat.ErrNotFound) {
			slog.Info("poll message missing, clearing reference", "poll_id", pollID)
			return c.Polls.ClearPostedMessage(pollID)
		}
		return fmt.Errorf("failed to verify poll message %s: %w", pollID, err)
	}

	view, err := c.Polls.Render(pollID)
	if err != nil {
		return err
	}
	if err := c.Chat.EditMessage(p.PostedChannelID, p.PostedMessageID, view.ChatMessage()); err != nil {
		if errors.Is(err, chat.ErrNotFound) {
			return c.Polls.ClearPostedMessage(pollID)
		}
		return fmt.Errorf("failed to edit poll message %s: %w", pollID, err)
	}
	return nil
}
