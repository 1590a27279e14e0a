package packets

import (
	"encoding/binary"
	"fmt"
	"io"
)

// SubscriptionOptions is the per-filter options byte of a v5 SUBSCRIBE.
type SubscriptionOptions struct {
	QoS               uint8
	NoLocal           bool
	RetainAsPublished bool
	RetainHandling    uint8
}

// SubscribePacket represents an MQTT v5.0 SUBSCRIBE control packet.
type SubscribePacket struct {
	PacketID   uint16
	Filters    []string
	Options    []SubscriptionOptions
	Properties *Properties
}

func (p *SubscribePacket) Type() uint8 { return SUBSCRIBE }

func (p *SubscribePacket) WriteTo(w io.Writer) (int64, error) {
	propsBytes := encodeProperties(p.Properties)

	var payloadLen int
	topicBytesList := make([][]byte, len(p.Filters))
	for i, f := range p.Filters {
		topicBytesList[i] = encodeString(f)
		payloadLen += len(topicBytesList[i]) + 1
	}

	header := &FixedHeader{
		PacketType:      SUBSCRIBE,
		Flags:           0x02,
		RemainingLength: 2 + len(propsBytes) + payloadLen,
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

	for i, tb := range topicBytesList {
		n, err = w.Write(tb)
		total += int64(n)
		if err != nil {
			return total, err
		}
		opt := p.Options[i]
		b := opt.QoS & 0x03
		if opt.NoLocal {
			b |= 1 << 2
		}
		if opt.RetainAsPublished {
			b |= 1 << 3
		}
		b |= (opt.RetainHandling & 0x03) << 4
		if err := binary.Write(w, binary.BigEndian, b); err != nil {
			return total, err
		}
		total++
	}
	return total, nil
}

// DecodeSubscribe decodes a SUBSCRIBE variable header and payload. The
// caller is expected to have already checked the fixed header flags are
// 0x02 via checkFixedHeaderFlags.
func DecodeSubscribe(buf []byte) (*SubscribePacket, error) {
	if len(buf) < 2 {
		return nil, fmt.Errorf("%w: SUBSCRIBE shorter than the minimum variable header", ErrMalformedPacket)
	}

	pkt := &SubscribePacket{}
	offset := 0

	pkt.PacketID = binary.BigEndian.Uint16(buf[offset:])
	offset += 2

	props, n, err := decodeProperties(buf[offset:])
	if err != nil {
		return nil, fmt.Errorf("SUBSCRIBE properties: %w", err)
	}
	pkt.Properties = props
	offset += n

	if offset >= len(buf) {
		return nil, fmt.Errorf("%w: SUBSCRIBE carries no topic filters", ErrProtocolError)
	}

	for offset < len(buf) {
		topic, n, err := decodeString(buf[offset:])
		if err != nil {
			return nil, fmt.Errorf("SUBSCRIBE topic filter: %w", err)
		}
		offset += n

		if offset >= len(buf) {
			return nil, fmt.Errorf("%w: SUBSCRIBE truncated before options byte", ErrMalformedPacket)
		}
		opts := buf[offset]
		offset++

		if opts&0xC0 != 0 {
			return nil, fmt.Errorf("%w: SUBSCRIBE options reserved bits set", ErrMalformedPacket)
		}
		if opts&0x03 == 3 {
			return nil, fmt.Errorf("%w: SUBSCRIBE requests QoS 3", ErrMalformedPacket)
		}
		if (opts>>4)&0x03 == 3 {
			return nil, fmt.Errorf("%w: SUBSCRIBE retain handling value 3 is reserved", ErrMalformedPacket)
		}

		pkt.Filters = append(pkt.Filters, topic)
		pkt.Options = append(pkt.Options, SubscriptionOptions{
			QoS:               opts & 0x03,
			NoLocal:           opts&(1<<2) != 0,
			RetainAsPublished: opts&(1<<3) != 0,
			RetainHandling:    (opts >> 4) & 0x03,
		})
	}

	if len(pkt.Filters) == 0 {
		return nil, fmt.Errorf("%w: SUBSCRIBE carries no topic filters", ErrProtocolError)
	}

	return pkt, nil
}
