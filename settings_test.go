package mqbroker

import (
	"log/slog"
	"testing"

	"github.com/gonzalop/mqbroker/internal/packets"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(discardWriter{}, nil))
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func TestNewSettingsDefaultsAreValid(t *testing.T) {
	s := NewSettings(WithLogger(discardLogger()))
	if !s.IsValid() {
		t.Fatal("default settings should be valid")
	}
}

func TestSettingsIsValidRejectsNonZeroReceiveMaximum(t *testing.T) {
	s := NewSettings(WithLogger(discardLogger()), WithReceiveMaximum(10))
	if s.IsValid() {
		t.Fatal("expected non-zero receive maximum to fail validation")
	}
}

func TestSettingsIsValidRejectsEmptyBindAddress(t *testing.T) {
	s := NewSettings(WithLogger(discardLogger()), WithBindAddress(""))
	if s.IsValid() {
		t.Fatal("expected empty bind address to fail validation")
	}
}

func TestSettingsIsValidRejectsMaximumPacketSize(t *testing.T) {
	s := NewSettings(WithLogger(discardLogger()), WithMaximumPacketSize(1024))
	if s.IsValid() {
		t.Fatal("expected a configured maximum packet size to fail validation")
	}
}

func TestBuildConnackSuccess(t *testing.T) {
	s := NewSettings(WithLogger(discardLogger()))
	connect := &packets.ConnectPacket{ClientID: "client-1"}

	connack := BuildConnack(s, connect)
	if connack.ReasonCode != packets.ReasonSuccess {
		t.Fatalf("ReasonCode = %v, want Success", connack.ReasonCode)
	}
	if connack.SessionPresent {
		t.Fatal("BuildConnack must never set SessionPresent itself")
	}
}

func TestBuildConnackAssignsClientIDWhenEmpty(t *testing.T) {
	s := NewSettings(WithLogger(discardLogger()))
	connect := &packets.ConnectPacket{ClientID: ""}

	connack := BuildConnack(s, connect)
	if connack.Properties == nil || connack.Properties.Presence&packets.PresAssignedClientIdentifier == 0 {
		t.Fatal("expected an assigned client identifier property")
	}
	if connack.Properties.AssignedClientIdentifier == "" {
		t.Fatal("expected a non-empty assigned client id")
	}
	if effectiveClientID(connect, connack) != connack.Properties.AssignedClientIdentifier {
		t.Fatal("effectiveClientID should return the assigned id when one was generated")
	}
}

func TestBuildConnackRejectsUsernamePassword(t *testing.T) {
	s := NewSettings(WithLogger(discardLogger()))
	connect := &packets.ConnectPacket{ClientID: "client-1", Username: "alice", UsernameFlag: true}

	connack := BuildConnack(s, connect)
	if connack.ReasonCode != packets.ReasonBadAuthenticationMethod {
		t.Fatalf("ReasonCode = %v, want BadAuthenticationMethod", connack.ReasonCode)
	}
}

func TestBuildConnackRejectsEnhancedAuth(t *testing.T) {
	s := NewSettings(WithLogger(discardLogger()))
	connect := &packets.ConnectPacket{
		ClientID: "client-1",
		Properties: &packets.Properties{
			Presence:             packets.PresAuthenticationMethod,
			AuthenticationMethod: "SCRAM-SHA-1",
		},
	}

	connack := BuildConnack(s, connect)
	if connack.ReasonCode != packets.ReasonBadAuthenticationMethod {
		t.Fatalf("ReasonCode = %v, want BadAuthenticationMethod", connack.ReasonCode)
	}
}

func TestBuildConnackReceiveMaximumIsMinOfBothSides(t *testing.T) {
	s := NewSettings(WithLogger(discardLogger())) // settings ReceiveMaximum defaults to 0
	connect := &packets.ConnectPacket{
		ClientID: "client-1",
		Properties: &packets.Properties{
			Presence:       packets.PresReceiveMaximum,
			ReceiveMaximum: 50,
		},
	}

	connack := BuildConnack(s, connect)
	if connack.Properties.ReceiveMaximum != 0 {
		t.Fatalf("ReceiveMaximum = %d, want 0 (min of settings=0 and client=50)", connack.Properties.ReceiveMaximum)
	}
}

func TestBuildConnackHonorsForceSessionExpiry(t *testing.T) {
	s := NewSettings(WithLogger(discardLogger()), WithSessionExpiryInterval(120), WithForceSessionExpiryInterval(true))
	connect := &packets.ConnectPacket{
		ClientID: "client-1",
		Properties: &packets.Properties{
			Presence:              packets.PresSessionExpiryInterval,
			SessionExpiryInterval: 99999,
		},
	}

	connack := BuildConnack(s, connect)
	if connack.Properties.SessionExpiryInterval != 120 {
		t.Fatalf("SessionExpiryInterval = %d, want 120 (forced)", connack.Properties.SessionExpiryInterval)
	}
}

func TestBuildConnackEchoesClientSessionExpiryWhenNotForced(t *testing.T) {
	s := NewSettings(WithLogger(discardLogger()))
	connect := &packets.ConnectPacket{
		ClientID: "client-1",
		Properties: &packets.Properties{
			Presence:              packets.PresSessionExpiryInterval,
			SessionExpiryInterval: 300,
		},
	}

	connack := BuildConnack(s, connect)
	if connack.Properties.SessionExpiryInterval != 300 {
		t.Fatalf("SessionExpiryInterval = %d, want 300 (echoed from client)", connack.Properties.SessionExpiryInterval)
	}
}

func TestBuildConnackForcesKeepAlive(t *testing.T) {
	s := NewSettings(WithLogger(discardLogger()), WithKeepAlive(30), WithForceKeepAlive(true))
	connect := &packets.ConnectPacket{ClientID: "client-1", KeepAlive: 300}

	connack := BuildConnack(s, connect)
	if connack.Properties.Presence&packets.PresServerKeepAlive == 0 {
		t.Fatal("expected ServerKeepAlive property to be present when forcing keep-alive")
	}
	if connack.Properties.ServerKeepAlive != 30 {
		t.Fatalf("ServerKeepAlive = %d, want 30", connack.Properties.ServerKeepAlive)
	}
}
