package packets

import (
	"fmt"
	"io"
)

// FixedHeader is the 2-to-5 byte header present on every MQTT control packet:
// [PacketType(4 bits) + Flags(4 bits)][Remaining Length, 1-4 bytes varint].
type FixedHeader struct {
	PacketType      uint8
	Flags           uint8
	RemainingLength int
}

// appendBytes appends the encoded fixed header to dst.
func (h *FixedHeader) appendBytes(dst []byte) []byte {
	dst = append(dst, (h.PacketType<<4)|(h.Flags&0x0F))
	return appendVarInt(dst, h.RemainingLength)
}

// WriteTo writes the fixed header to w.
func (h *FixedHeader) WriteTo(w io.Writer) (int64, error) {
	var buf [5]byte
	out := h.appendBytes(buf[:0])
	n, err := w.Write(out)
	return int64(n), err
}

// DecodeFixedHeader reads and decodes a fixed header from r.
func DecodeFixedHeader(r io.Reader) (*FixedHeader, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, err
	}

	packetType := buf[0] >> 4
	flags := buf[0] & 0x0F

	remainingLength, err := decodeVarInt(r)
	if err != nil {
		return nil, fmt.Errorf("decode remaining length: %w", err)
	}

	return &FixedHeader{
		PacketType:      packetType,
		Flags:           flags,
		RemainingLength: remainingLength,
	}, nil
}

// requiredFlags gives the fixed flags mandated by the MQTT v5 spec for packet
// types whose flags are not meaningful; a type absent from the map is not
// checked (PUBLISH encodes DUP/QoS/RETAIN in its flags).
var requiredFlags = map[uint8]uint8{
	CONNECT:     0x00,
	CONNACK:     0x00,
	SUBSCRIBE:   0x02,
	SUBACK:      0x00,
	UNSUBSCRIBE: 0x02,
	UNSUBACK:    0x00,
	PINGREQ:     0x00,
	PINGRESP:    0x00,
	DISCONNECT:  0x00,
}

// checkFixedHeaderFlags validates the reserved-bits contract on packet types
// whose flags field is not client data.
func checkFixedHeaderFlags(h *FixedHeader) error {
	want, fixed := requiredFlags[h.PacketType]
	if !fixed || h.PacketType == PUBLISH {
		return nil
	}
	if h.Flags != want {
		return fmt.Errorf("%w: %s fixed header flags 0x%X, want 0x%X",
			ErrMalformedPacket, PacketNames[h.PacketType], h.Flags, want)
	}
	return nil
}
