// Copyright (c) 2026 Jonas Hartmann.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package chat

import "errors"

// ErrNotFound reports that a previously recorded message no longer exists.
// Callers treat it as recoverable: clear the stale reference and move on.
var ErrNotFound = errors.New("chat: message not found")

// Field is one labeled section of a rich message.
type Field struct {
	Name  string
	Value string
}

// Message is the display payload the core hands to the platform layer:
// title, description and an ordered field list.
type Message struct {
	Title       string
	Description string
	Fields      []Field
}

// Client is the platform surface the core depends on. The real
// implementation lives in the discord package; tests use a fake.
type Client interface {
	SendMessage(channelID string, msg Message) (messageID string, err error)
	EditMessage(channelID, messageID string, msg Message) error
	DeleteMessage(channelID, messageID string) error
	FetchMessage(channelID, messageID string) (Message, error)
}

// Interaction is one button click or form submission routed back into the
// core: the acting user, the component that fired, and any form fields.
type Interaction struct {
	UserID      string
	ComponentID string
	FormFields  map[string]string
}
