package mqbroker

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gonzalop/mqbroker/internal/packets"
)

func TestBrokerErrorIsMatchesReasonCode(t *testing.T) {
	err := &BrokerError{ReasonCode: packets.ReasonMalformedPacket, Message: "bad packet"}

	if !errors.Is(err, ReasonCode(packets.ReasonMalformedPacket)) {
		t.Fatal("expected errors.Is to match on reason code")
	}
	if errors.Is(err, ReasonCode(packets.ReasonProtocolError)) {
		t.Fatal("expected errors.Is to not match a different reason code")
	}
}

func TestBrokerErrorUnwrap(t *testing.T) {
	parent := errors.New("underlying cause")
	err := &BrokerError{ReasonCode: packets.ReasonUnspecifiedError, Parent: parent}

	if !errors.Is(err, parent) {
		t.Fatal("expected errors.Is to find the wrapped parent error")
	}
}

func TestBrokerErrorMessage(t *testing.T) {
	err := &BrokerError{ReasonCode: packets.ReasonMalformedPacket, Message: "bad packet"}
	got := err.Error()
	want := fmt.Sprintf("mqtt error (0x%02X %s): bad packet", uint8(packets.ReasonMalformedPacket), packets.ReasonMalformedPacket)
	if got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}
