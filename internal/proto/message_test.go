package proto

import "testing"

func TestParseLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Command
	}{
		{"empty", "", Command{Kind: CommandNone}},
		{"whitespace only", "   \t ", Command{Kind: CommandNone}},
		{"logout", "LOGOUT", Command{Kind: CommandLogout}},
		{"logout lowercase", "logout", Command{Kind: CommandLogout}},
		{"logout mixed case", "LogOut", Command{Kind: CommandLogout}},
		{"shutdown", "SHUTDOWN", Command{Kind: CommandShutdown}},
		{"who", "who", Command{Kind: CommandWho}},
		{"ban with arg", "BAN alice", Command{Kind: CommandBan, Arg: "alice"}},
		{"ban lowercase", "ban alice", Command{Kind: CommandBan, Arg: "alice"}},
		{"ban missing arg", "BAN", Command{Kind: CommandBan, Arg: ""}},
		{"ban extra spaces", "BAN    alice  ", Command{Kind: CommandBan, Arg: "alice"}},
		{"ban tab separated", "BAN\talice", Command{Kind: CommandBan, Arg: "alice"}},
		{"unban with arg", "UNBAN bob", Command{Kind: CommandUnban, Arg: "bob"}},
		{"chat text", "hello world", Command{Kind: CommandChat, Text: "hello world"}},
		{"chat single word", "hello", Command{Kind: CommandChat, Text: "hello"}},
		{"chat mentioning ban", "I will ban nobody", Command{Kind: CommandChat, Text: "I will ban nobody"}},
		{"chat surrounded by spaces", "  hi there  ", Command{Kind: CommandChat, Text: "hi there"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseLine(tt.line)
			if got != tt.want {
				t.Fatalf("ParseLine(%q) = %+v, want %+v", tt.line, got, tt.want)
			}
		})
	}
}
