package mqbroker

import "github.com/gonzalop/mqbroker/internal/packets"

// handlePublish implements §4.10's PUBLISH fan-out: every session whose
// Subscription Table matches the topic name, and that currently has a live
// peer, receives a copy of the packet. QoS is bounded to AtMostOnce by
// settings validation, so no PUBACK/PUBREC flow control is needed here.
func handlePublish(registry *Registry, pub *packets.PublishPacket) {
	registry.Iter(func(s *Session) bool {
		if !s.Subscriptions.Matches(pub.Topic) {
			return true
		}
		target := s.LivePeer()
		if target == nil {
			return true
		}
		target.Send(&packets.PublishPacket{
			Dup:        false,
			QoS:        0,
			Retain:     false,
			Topic:      pub.Topic,
			Payload:    pub.Payload,
			Properties: pub.Properties,
		})
		return true
	})
}
