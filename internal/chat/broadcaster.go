package chat

import (
	"fmt"
	"time"

	"github.com/ibaimoya/sockchat/internal/proto"
)

const displayTimeFormat = "15:04:05"

// Broadcast fans one message out to every live session except the
// sender's own. Ordinary chat (TypeMessage) is rendered with a timestamp
// and sender prefix and is filtered per recipient: anyone who banned the
// sender is skipped. Server-composed announcements (notices, logout,
// shutdown) are sent as-is and are exempt from ban filtering.
//
// If the sender is no longer registered the message is dropped and
// logged; the session vanished mid-flight.
func (s *Server) Broadcast(msg proto.ChatMessage) {
	sender, ok := s.registry.ByID(msg.SenderID)
	if !ok {
		s.log.Warn().Int64("sender_id", msg.SenderID).Msg("dropping message from vanished sender")
		return
	}

	line := msg.Body
	banFiltered := msg.Type == proto.TypeMessage
	if banFiltered {
		line = fmt.Sprintf("[%s] %s: %s", time.Now().Format(displayTimeFormat), sender.Username, msg.Body)
	}

	for _, rcpt := range s.registry.Snapshot() {
		if rcpt.ID == sender.ID {
			continue
		}
		if banFiltered && rcpt.HasBanned(sender.Username) {
			continue
		}
		if err := rcpt.Send(line); err != nil {
			// One broken peer must not silence the room.
			s.log.Warn().Err(err).Str("recipient", rcpt.Username).Msg("broadcast write failed")
		}
	}
}
