package packets

import (
	"encoding/binary"
	"fmt"
	"io"
)

// SubackPacket represents an MQTT v5.0 SUBACK control packet.
type SubackPacket struct {
	PacketID    uint16
	ReasonCodes []ReasonCode
	Properties  *Properties
}

func (p *SubackPacket) Type() uint8 { return SUBACK }

func (p *SubackPacket) WriteTo(w io.Writer) (int64, error) {
	propsBytes := encodeProperties(p.Properties)

	header := &FixedHeader{
		PacketType:      SUBACK,
		RemainingLength: 2 + len(propsBytes) + len(p.ReasonCodes),
	}

	var total int64
	hN, err := header.WriteTo(w)
	total += hN
	if err != nil {
		return total, err
	}

	var packetIDBytes [2]byte
	binary.BigEndian.PutUint16(packetIDBytes[:], p.PacketID)
	n, err := w.Write(packetIDBytes[:])
	total += int64(n)
	if err != nil {
		return total, err
	}
	n, err = w.Write(propsBytes)
	total += int64(n)
	if err != nil {
		return total, err
	}

	codes := make([]byte, len(p.ReasonCodes))
	for i, c := range p.ReasonCodes {
		codes[i] = byte(c)
	}
	n, err = w.Write(codes)
	total += int64(n)
	return total, err
}

// DecodeSuback decodes a SUBACK variable header and payload. Kept for
// symmetry; the broker only ever sends SUBACK.
func DecodeSuback(buf []byte) (*SubackPacket, error) {
	if len(buf) < 2 {
		return nil, fmt.Errorf("%w: SUBACK shorter than the minimum variable header", ErrMalformedPacket)
	}
	pkt := &SubackPacket{PacketID: binary.BigEndian.Uint16(buf)}
	offset := 2

	props, n, err := decodeProperties(buf[offset:])
	if err != nil {
		return nil, fmt.Errorf("SUBACK properties: %w", err)
	}
	pkt.Properties = props
	offset += n

	for _, b := range buf[offset:] {
		pkt.ReasonCodes = append(pkt.ReasonCodes, ReasonCode(b))
	}
	return pkt, nil
}
