package mqbroker

import (
	"testing"

	"github.com/gonzalop/mqbroker/internal/packets"
)

func TestHandlePublishFansOutToMatchingSessions(t *testing.T) {
	registry := NewRegistry()
	settings := NewSettings(WithLogger(discardLogger()))

	subscriber1 := connectedPeerOnRegistry(registry, settings, "sub-1")
	subscriber1.Session().Subscriptions.Add("sensors/temp", packets.SubscriptionOptions{}, 0, false)

	subscriber2 := connectedPeerOnRegistry(registry, settings, "sub-2")
	subscriber2.Session().Subscriptions.Add("sensors/temp", packets.SubscriptionOptions{}, 0, false)

	uninterested := connectedPeerOnRegistry(registry, settings, "sub-3")
	uninterested.Session().Subscriptions.Add("sensors/humidity", packets.SubscriptionOptions{}, 0, false)

	handlePublish(registry, &packets.PublishPacket{Topic: "sensors/temp", Payload: []byte("21")})

	for _, p := range []*Peer{subscriber1, subscriber2} {
		select {
		case pkt := <-p.Outbound():
			pub := pkt.(*packets.PublishPacket)
			if pub.Topic != "sensors/temp" || string(pub.Payload) != "21" {
				t.Fatalf("unexpected fanned-out publish: %+v", pub)
			}
		default:
			t.Fatal("expected a fanned-out PUBLISH for a matching subscriber")
		}
	}

	select {
	case pkt := <-uninterested.Outbound():
		t.Fatalf("unexpected publish delivered to a non-matching subscriber: %+v", pkt)
	default:
	}
}

func TestHandlePublishSkipsDeadPeers(t *testing.T) {
	registry := NewRegistry()
	settings := NewSettings(WithLogger(discardLogger()))

	peer := connectedPeerOnRegistry(registry, settings, "sub-1")
	peer.Session().Subscriptions.Add("a/b", packets.SubscriptionOptions{}, 0, false)
	peer.Close()

	handlePublish(registry, &packets.PublishPacket{Topic: "a/b", Payload: []byte("x")})

	select {
	case pkt := <-peer.Outbound():
		t.Fatalf("unexpected delivery to a closing peer: %+v", pkt)
	default:
	}
}

func TestHandlePublishAlwaysOriginatesQoS0(t *testing.T) {
	registry := NewRegistry()
	settings := NewSettings(WithLogger(discardLogger()))
	peer := connectedPeerOnRegistry(registry, settings, "sub-1")
	peer.Session().Subscriptions.Add("a/b", packets.SubscriptionOptions{}, 0, false)

	handlePublish(registry, &packets.PublishPacket{Topic: "a/b", QoS: 1, Dup: true, Retain: true})

	pub := (<-peer.Outbound()).(*packets.PublishPacket)
	if pub.QoS != 0 || pub.Dup || pub.Retain {
		t.Fatalf("expected fan-out to normalize to QoS0/no-dup/no-retain, got %+v", pub)
	}
}

func connectedPeerOnRegistry(registry *Registry, settings *Settings, clientID string) *Peer {
	peer := NewPeer("127.0.0.1:1", 4, nil)
	handleConnectTest(registry, settings, peer, clientID)
	return peer
}

func handleConnectTest(registry *Registry, settings *Settings, peer *Peer, clientID string) {
	handleConnect(registry, settings, peer, &packets.ConnectPacket{ClientID: clientID, CleanStart: true}, discardLogger())
	<-peer.Outbound() // drain CONNACK
}
