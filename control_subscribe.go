package mqbroker

import (
	"github.com/gonzalop/mqbroker/internal/packets"
)

// handleSubscribe implements §4.10's SUBSCRIBE rules.
func handleSubscribe(settings *Settings, peer *Peer, sub *packets.SubscribePacket) {
	session := peer.Session()
	if session == nil {
		codes := make([]packets.ReasonCode, len(sub.Filters))
		for i := range codes {
			codes[i] = packets.ReasonUnspecifiedError
		}
		peer.SendClose(&packets.SubackPacket{PacketID: sub.PacketID, ReasonCodes: codes})
		return
	}

	if sub.Properties != nil && len(sub.Properties.SubscriptionIdentifier) > 0 {
		codes := make([]packets.ReasonCode, len(sub.Filters))
		for i := range codes {
			codes[i] = packets.ReasonSubscriptionIDNotSupp
		}
		peer.SendClose(&packets.SubackPacket{PacketID: sub.PacketID, ReasonCodes: codes})
		return
	}

	codes := make([]packets.ReasonCode, len(sub.Filters))
	for i, filter := range sub.Filters {
		opts := sub.Options[i]
		switch {
		case QoS(opts.QoS) > settings.MaximumQoS:
			codes[i] = packets.ReasonQoSNotSupported
		case isSharedFilter(filter):
			codes[i] = packets.ReasonSharedSubNotSupported
		case hasWildcard(filter):
			codes[i] = packets.ReasonWildcardSubNotSupported
		default:
			codes[i] = packets.ReasonSuccess
			session.Subscriptions.Add(filter, opts, 0, false)
		}
	}

	peer.Send(&packets.SubackPacket{PacketID: sub.PacketID, ReasonCodes: codes})
}
