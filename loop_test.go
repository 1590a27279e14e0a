package mqbroker

import (
	"testing"

	"github.com/gonzalop/mqbroker/internal/packets"
)

func TestDispatchPingreqBeforeConnectIsUnsupported(t *testing.T) {
	registry := NewRegistry()
	settings := NewSettings(WithLogger(discardLogger()))
	peer := NewPeer("127.0.0.1:1", 4, nil)

	dispatch(settings, registry, Command{Peer: peer, Packet: &packets.PingreqPacket{}}, discardLogger(), nil)

	if !peer.Closing() {
		t.Fatal("PINGREQ before CONNECT must close the connection")
	}
	connack := (<-peer.Outbound()).(*packets.ConnackPacket)
	if connack.ReasonCode != packets.ReasonImplementationSpecific {
		t.Fatalf("ReasonCode = %v, want ImplementationSpecificError", connack.ReasonCode)
	}
}

func TestDispatchPublishBeforeConnectIsUnsupported(t *testing.T) {
	registry := NewRegistry()
	settings := NewSettings(WithLogger(discardLogger()))
	peer := NewPeer("127.0.0.1:1", 4, nil)

	dispatch(settings, registry, Command{Peer: peer, Packet: &packets.PublishPacket{Topic: "a/b"}}, discardLogger(), nil)

	if !peer.Closing() {
		t.Fatal("PUBLISH before CONNECT must close the connection")
	}
}

func TestDispatchPingreqAfterConnectSucceeds(t *testing.T) {
	registry := NewRegistry()
	settings := NewSettings(WithLogger(discardLogger()))
	peer := NewPeer("127.0.0.1:1", 4, nil)
	dispatch(settings, registry, Command{Peer: peer, Packet: &packets.ConnectPacket{ClientID: "c1", CleanStart: true}}, discardLogger(), nil)
	<-peer.Outbound() // drain CONNACK

	dispatch(settings, registry, Command{Peer: peer, Packet: &packets.PingreqPacket{}}, discardLogger(), nil)

	pkt := <-peer.Outbound()
	if pkt.Type() != packets.PINGRESP {
		t.Fatalf("got packet type %d, want PINGRESP", pkt.Type())
	}
	if peer.Closing() {
		t.Fatal("a successful PINGREQ must not close the connection")
	}
}

func TestDispatchSecondConnectTriggersTakeover(t *testing.T) {
	registry := NewRegistry()
	settings := NewSettings(WithLogger(discardLogger()))

	firstPeer := NewPeer("127.0.0.1:1", 4, nil)
	dispatch(settings, registry, Command{Peer: firstPeer, Packet: &packets.ConnectPacket{ClientID: "c1", CleanStart: true}}, discardLogger(), nil)
	<-firstPeer.Outbound()

	secondPeer := NewPeer("127.0.0.1:2", 4, nil)
	dispatch(settings, registry, Command{Peer: secondPeer, Packet: &packets.ConnectPacket{ClientID: "c1", CleanStart: true}}, discardLogger(), nil)

	if !firstPeer.Closing() {
		t.Fatal("the first connection must be closed by the takeover")
	}
	session, _ := registry.Get("c1")
	if session.Peer() != secondPeer {
		t.Fatal("the second connection must own the session after takeover")
	}
}

func TestDispatchUnknownPacketIsUnsupported(t *testing.T) {
	registry := NewRegistry()
	settings := NewSettings(WithLogger(discardLogger()))
	peer := NewPeer("127.0.0.1:1", 4, nil)

	dispatch(settings, registry, Command{Peer: peer, Packet: &packets.UnknownPacket{PacketType: packets.PUBACK}}, discardLogger(), nil)

	if !peer.Closing() {
		t.Fatal("an unknown packet type must close the connection")
	}
}

func TestRunCommandLoopDrainsWithDisconnectAfterShutdown(t *testing.T) {
	registry := NewRegistry()
	settings := NewSettings(WithLogger(discardLogger()))
	shutdown := NewTrigger()
	shutdown.Fire()

	commands := make(chan Command, 1)
	peer := NewPeer("127.0.0.1:1", 4, nil)
	commands <- Command{Peer: peer, Packet: &packets.PingreqPacket{}}
	close(commands)

	RunCommandLoop(settings, registry, commands, shutdown, nil)

	disconnect := (<-peer.Outbound()).(*packets.DisconnectPacket)
	if disconnect.ReasonCode != packets.ReasonServerShuttingDown {
		t.Fatalf("ReasonCode = %v, want ServerShuttingDown", disconnect.ReasonCode)
	}
}

func TestRunCommandLoopFiresShutdownOnInvalidSettings(t *testing.T) {
	registry := NewRegistry()
	settings := NewSettings(WithLogger(discardLogger()), WithReceiveMaximum(5))
	shutdown := NewTrigger()
	commands := make(chan Command)
	close(commands)

	RunCommandLoop(settings, registry, commands, shutdown, nil)

	if !shutdown.Fired() {
		t.Fatal("invalid settings at startup must fire the shutdown trigger")
	}
}
