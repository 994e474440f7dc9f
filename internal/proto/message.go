package proto

import "strings"

// MessageType governs how the broadcast engine formats a message and
// whether per-recipient ban filtering applies.
type MessageType int

const (
	// TypeMessage is ordinary user chat text. It is rendered with a
	// timestamp and sender prefix and is subject to ban filtering.
	TypeMessage MessageType = iota
	// TypeNotice is a server-composed announcement (join, ban, unban).
	// The body is already a full sentence and goes to everyone.
	TypeNotice
	// TypeLogout is the departure announcement for an explicit logout.
	TypeLogout
	// TypeShutdown announces that the whole server is going down.
	TypeShutdown
)

// ChatMessage is one outbound unit of communication. Immutable once built.
type ChatMessage struct {
	SenderID int64
	Type     MessageType
	Body     string
}

// CommandKind is what a single inbound line asks the server to do.
type CommandKind int

const (
	// CommandChat carries ordinary message text.
	CommandChat CommandKind = iota
	// CommandNone is a blank line; dropped silently.
	CommandNone
	CommandLogout
	CommandBan
	CommandUnban
	CommandWho
	CommandShutdown
)

// Command is the parsed form of one protocol line.
type Command struct {
	Kind CommandKind
	// Arg is the username argument of BAN/UNBAN, possibly empty.
	Arg string
	// Text is the chat body for CommandChat.
	Text string
}

// ParseLine tokenizes one inbound line on the first whitespace boundary.
// The command word is case-insensitive; anything unrecognized is chat text.
func ParseLine(line string) Command {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return Command{Kind: CommandNone}
	}

	word := trimmed
	rest := ""
	if i := strings.IndexAny(trimmed, " \t"); i >= 0 {
		word = trimmed[:i]
		rest = strings.TrimSpace(trimmed[i+1:])
	}

	switch strings.ToUpper(word) {
	case "LOGOUT":
		return Command{Kind: CommandLogout}
	case "BAN":
		return Command{Kind: CommandBan, Arg: rest}
	case "UNBAN":
		return Command{Kind: CommandUnban, Arg: rest}
	case "WHO":
		return Command{Kind: CommandWho}
	case "SHUTDOWN":
		return Command{Kind: CommandShutdown}
	}
	return Command{Kind: CommandChat, Text: trimmed}
}
