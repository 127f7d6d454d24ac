// Copyright (c) 2026 Jonas Hartmann.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package chat abstracts the chat platform.

The core only needs four message operations (send, edit, delete, fetch by
channel id + message id), a display payload (Message), and the ErrNotFound
sentinel for references that went stale. Everything platform specific -
embeds, buttons, gateway sessions - stays in the discord package.
*/
package chat
