package mqbroker

import (
	"errors"
	"fmt"

	"github.com/gonzalop/mqbroker/internal/packets"
)

// ErrShutdown reports that the broker's Shutdown trigger has fired. None of
// this package's own functions return it.
var ErrShutdown = errors.New("mqbroker: broker is shutting down")

// BrokerError is an error carrying an MQTT v5 reason code, mirroring the
// shape the reference client library uses for its own MqttError: a reason
// code, an optional human-readable message, and an optional wrapped cause.
type BrokerError struct {
	ReasonCode packets.ReasonCode
	Message    string
	Parent     error
}

func (e *BrokerError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("mqtt error (0x%02X %s): %s", uint8(e.ReasonCode), e.ReasonCode, e.Message)
	}
	if e.Parent != nil {
		return fmt.Sprintf("mqtt error (0x%02X %s): %s", uint8(e.ReasonCode), e.ReasonCode, e.Parent.Error())
	}
	return fmt.Sprintf("mqtt error (0x%02X %s)", uint8(e.ReasonCode), e.ReasonCode)
}

func (e *BrokerError) Unwrap() error {
	return e.Parent
}

// Is lets callers write errors.Is(err, mqbroker.ReasonCode(packets.ReasonMalformedPacket)).
func (e *BrokerError) Is(target error) bool {
	var rc reasonCodeErr
	if errors.As(target, &rc) {
		return e.ReasonCode == rc.code
	}
	return false
}

type reasonCodeErr struct{ code packets.ReasonCode }

func (r reasonCodeErr) Error() string { return r.code.String() }

// ReasonCode wraps a bare packets.ReasonCode as an error so it can be used
// as the target of errors.Is against a *BrokerError.
func ReasonCode(code packets.ReasonCode) error {
	return reasonCodeErr{code: code}
}
