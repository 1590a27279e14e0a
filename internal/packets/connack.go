package packets

import (
	"encoding/binary"
	"fmt"
	"io"
)

// ConnackPacket represents an MQTT v5.0 CONNACK control packet.
type ConnackPacket struct {
	SessionPresent bool
	ReasonCode     ReasonCode
	Properties     *Properties
}

func (p *ConnackPacket) Type() uint8 { return CONNACK }

func (p *ConnackPacket) WriteTo(w io.Writer) (int64, error) {
	propsBytes := encodeProperties(p.Properties)

	header := &FixedHeader{PacketType: CONNACK, RemainingLength: 2 + len(propsBytes)}

	var total int64
	hN, err := header.WriteTo(w)
	total += hN
	if err != nil {
		return total, err
	}

	var ackFlags uint8
	if p.SessionPresent {
		ackFlags = 0x01
	}
	if err := binary.Write(w, binary.BigEndian, ackFlags); err != nil {
		return total, err
	}
	total++
	if err := binary.Write(w, binary.BigEndian, uint8(p.ReasonCode)); err != nil {
		return total, err
	}
	total++
	n, err := w.Write(propsBytes)
	total += int64(n)
	return total, err
}

// DecodeConnack decodes a CONNACK variable header. The broker never
// receives one (it only sends them), but decoding is kept for symmetry and
// for tests that round-trip packets.
func DecodeConnack(buf []byte) (*ConnackPacket, error) {
	if len(buf) < 2 {
		return nil, fmt.Errorf("%w: CONNACK shorter than the minimum variable header", ErrMalformedPacket)
	}
	pkt := &ConnackPacket{
		SessionPresent: buf[0]&0x01 != 0,
		ReasonCode:     ReasonCode(buf[1]),
	}
	if len(buf) > 2 {
		props, _, err := decodeProperties(buf[2:])
		if err != nil {
			return nil, fmt.Errorf("CONNACK properties: %w", err)
		}
		pkt.Properties = props
	}
	return pkt, nil
}
