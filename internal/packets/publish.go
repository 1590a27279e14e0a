package packets

import (
	"encoding/binary"
	"fmt"
	"io"
)

// PublishPacket represents an MQTT v5.0 PUBLISH control packet. This broker
// only ever originates QoS 0 publishes, but decodes whatever QoS a client
// sends; the Command Loop fans a higher-QoS publish out at QoS 0.
type PublishPacket struct {
	Dup    bool
	QoS    uint8
	Retain bool

	Topic    string
	PacketID uint16 // only meaningful if QoS > 0

	Payload []byte

	Properties *Properties
}

func (p *PublishPacket) Type() uint8 { return PUBLISH }

func (p *PublishPacket) WriteTo(w io.Writer) (int64, error) {
	topicBytes := encodeString(p.Topic)
	propsBytes := encodeProperties(p.Properties)

	variableHeaderLen := len(topicBytes) + len(propsBytes)
	if p.QoS > 0 {
		variableHeaderLen += 2
	}

	var flags uint8
	if p.Dup {
		flags |= 0x08
	}
	flags |= (p.QoS & 0x03) << 1
	if p.Retain {
		flags |= 0x01
	}

	header := &FixedHeader{
		PacketType:      PUBLISH,
		Flags:           flags,
		RemainingLength: variableHeaderLen + len(p.Payload),
	}

	var total int64
	hN, err := header.WriteTo(w)
	total += hN
	if err != nil {
		return total, err
	}

	n, err := w.Write(topicBytes)
	total += int64(n)
	if err != nil {
		return total, err
	}
	if p.QoS > 0 {
		var idBytes [2]byte
		binary.BigEndian.PutUint16(idBytes[:], p.PacketID)
		n, err = w.Write(idBytes[:])
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	n, err = w.Write(propsBytes)
	total += int64(n)
	if err != nil {
		return total, err
	}
	n, err = w.Write(p.Payload)
	total += int64(n)
	return total, err
}

// DecodePublish decodes a PUBLISH variable header and payload, using the
// fixed header's flags for Dup/QoS/Retain.
func DecodePublish(buf []byte, header *FixedHeader) (*PublishPacket, error) {
	pkt := &PublishPacket{
		Dup:    header.Flags&0x08 != 0,
		QoS:    (header.Flags >> 1) & 0x03,
		Retain: header.Flags&0x01 != 0,
	}
	if pkt.QoS == 3 {
		return nil, fmt.Errorf("%w: PUBLISH QoS 3 is not a valid QoS", ErrMalformedPacket)
	}
	if pkt.Dup && pkt.QoS == 0 {
		return nil, fmt.Errorf("%w: PUBLISH DUP set with QoS 0", ErrMalformedPacket)
	}

	offset := 0
	topic, n, err := decodeString(buf[offset:])
	if err != nil {
		return nil, fmt.Errorf("PUBLISH topic: %w", err)
	}
	if topic == "" {
		return nil, fmt.Errorf("%w: PUBLISH topic name is empty", ErrProtocolError)
	}
	pkt.Topic = topic
	offset += n

	if pkt.QoS > 0 {
		if offset+2 > len(buf) {
			return nil, fmt.Errorf("%w: PUBLISH truncated before packet id", ErrMalformedPacket)
		}
		pkt.PacketID = binary.BigEndian.Uint16(buf[offset:])
		offset += 2
	}

	props, nProps, err := decodeProperties(buf[offset:])
	if err != nil {
		return nil, fmt.Errorf("PUBLISH properties: %w", err)
	}
	pkt.Properties = props
	offset += nProps

	pkt.Payload = append([]byte(nil), buf[offset:]...)
	return pkt, nil
}
