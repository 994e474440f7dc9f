package chat

import (
	"fmt"
	"io"
	"net"
	"testing"

	"github.com/ibaimoya/sockchat/internal/config"
	"github.com/ibaimoya/sockchat/internal/log"
	"github.com/ibaimoya/sockchat/internal/proto"
	"github.com/ibaimoya/sockchat/internal/transport"
)

func benchmarkBroadcast(b *testing.B, recipients int) {
	srv := NewServer(config.Default(), log.Nop(), nil)

	addPipeSession := func(name string) *Session {
		server, client := net.Pipe()
		b.Cleanup(func() {
			server.Close()
			client.Close()
		})
		go func() { _, _ = io.Copy(io.Discard, client) }()

		sess, err := srv.registry.Add(name, transport.NewConn(server))
		if err != nil {
			b.Fatalf("add %s: %v", name, err)
		}
		return sess
	}

	sender := addPipeSession("sender")
	for i := 0; i < recipients; i++ {
		addPipeSession(fmt.Sprintf("user%03d", i))
	}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		srv.Broadcast(proto.ChatMessage{
			SenderID: sender.ID,
			Type:     proto.TypeMessage,
			Body:     "payload",
		})
	}
}

func BenchmarkBroadcast_10(b *testing.B)  { benchmarkBroadcast(b, 10) }
func BenchmarkBroadcast_100(b *testing.B) { benchmarkBroadcast(b, 100) }
func BenchmarkBroadcast_500(b *testing.B) { benchmarkBroadcast(b, 500) }
