package packets

import (
	"encoding/binary"
	"fmt"
	"io"
)

// ConnectPacket represents an MQTT v5.0 CONNECT control packet.
type ConnectPacket struct {
	ProtocolName  string
	ProtocolLevel uint8

	CleanStart   bool
	WillFlag     bool
	WillQoS      uint8
	WillRetain   bool
	PasswordFlag bool
	UsernameFlag bool

	KeepAlive uint16

	ClientID string

	WillTopic      string
	WillMessage    []byte
	WillProperties *Properties

	Username string
	Password string

	Properties *Properties
}

func (p *ConnectPacket) Type() uint8 { return CONNECT }

func (p *ConnectPacket) WriteTo(w io.Writer) (int64, error) {
	protocolNameBytes := encodeString(p.ProtocolName)

	var connectFlags uint8
	if p.CleanStart {
		connectFlags |= 0x02
	}
	if p.WillFlag {
		connectFlags |= 0x04
		connectFlags |= (p.WillQoS & 0x03) << 3
		if p.WillRetain {
			connectFlags |= 0x20
		}
	}
	if p.PasswordFlag {
		connectFlags |= 0x40
	}
	if p.UsernameFlag {
		connectFlags |= 0x80
	}

	propsBytes := encodeProperties(p.Properties)

	clientIDBytes := encodeString(p.ClientID)

	variableHeaderLen := len(protocolNameBytes) + 1 + 1 + 2 + len(propsBytes)
	payloadLen := len(clientIDBytes)

	var willPropsBytes, willTopicBytes, willMsgBytes, usernameBytes, passwordBytes []byte
	if p.WillFlag {
		willPropsBytes = encodeProperties(p.WillProperties)
		willTopicBytes = encodeString(p.WillTopic)
		willMsgBytes = encodeBinary(p.WillMessage)
		payloadLen += len(willPropsBytes) + len(willTopicBytes) + len(willMsgBytes)
	}
	if p.UsernameFlag {
		usernameBytes = encodeString(p.Username)
		payloadLen += len(usernameBytes)
	}
	if p.PasswordFlag {
		passwordBytes = encodeString(p.Password)
		payloadLen += len(passwordBytes)
	}

	header := &FixedHeader{PacketType: CONNECT, RemainingLength: variableHeaderLen + payloadLen}

	var total int64
	hN, err := header.WriteTo(w)
	total += hN
	if err != nil {
		return total, err
	}

	for _, chunk := range [][]byte{protocolNameBytes} {
		n, err := w.Write(chunk)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	if err := binary.Write(w, binary.BigEndian, p.ProtocolLevel); err != nil {
		return total, err
	}
	total++
	if err := binary.Write(w, binary.BigEndian, connectFlags); err != nil {
		return total, err
	}
	total++
	var keepAliveBytes [2]byte
	binary.BigEndian.PutUint16(keepAliveBytes[:], p.KeepAlive)
	n, err := w.Write(keepAliveBytes[:])
	total += int64(n)
	if err != nil {
		return total, err
	}
	n, err = w.Write(propsBytes)
	total += int64(n)
	if err != nil {
		return total, err
	}
	n, err = w.Write(clientIDBytes)
	total += int64(n)
	if err != nil {
		return total, err
	}
	if p.WillFlag {
		for _, chunk := range [][]byte{willPropsBytes, willTopicBytes, willMsgBytes} {
			n, err = w.Write(chunk)
			total += int64(n)
			if err != nil {
				return total, err
			}
		}
	}
	if p.UsernameFlag {
		n, err = w.Write(usernameBytes)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	if p.PasswordFlag {
		n, err = w.Write(passwordBytes)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// DecodeConnect decodes a CONNECT variable header and payload.
func DecodeConnect(buf []byte) (*ConnectPacket, error) {
	if len(buf) < 10 {
		return nil, fmt.Errorf("%w: CONNECT shorter than the minimum variable header", ErrMalformedPacket)
	}

	pkt := &ConnectPacket{}
	offset := 0

	protocolName, n, err := decodeString(buf[offset:])
	if err != nil {
		return nil, fmt.Errorf("CONNECT protocol name: %w", err)
	}
	pkt.ProtocolName = protocolName
	offset += n

	if protocolName != "MQTT" {
		return nil, fmt.Errorf("%w: unrecognized protocol name %q", ErrMalformedPacket, protocolName)
	}

	pkt.ProtocolLevel = buf[offset]
	offset++
	if pkt.ProtocolLevel != 5 {
		return nil, fmt.Errorf("%w: unsupported protocol level %d", ErrProtocolError, pkt.ProtocolLevel)
	}

	connectFlags := buf[offset]
	offset++
	if connectFlags&0x01 != 0 {
		return nil, fmt.Errorf("%w: CONNECT reserved flag bit set", ErrMalformedPacket)
	}

	pkt.CleanStart = (connectFlags & 0x02) != 0
	pkt.WillFlag = (connectFlags & 0x04) != 0
	pkt.WillQoS = (connectFlags >> 3) & 0x03
	pkt.WillRetain = (connectFlags & 0x20) != 0
	pkt.PasswordFlag = (connectFlags & 0x40) != 0
	pkt.UsernameFlag = (connectFlags & 0x80) != 0

	if !pkt.WillFlag && (pkt.WillQoS != 0 || pkt.WillRetain) {
		return nil, fmt.Errorf("%w: will flags set without will flag", ErrMalformedPacket)
	}
	if pkt.WillQoS == 3 {
		return nil, fmt.Errorf("%w: will QoS 3 is not a valid QoS", ErrMalformedPacket)
	}

	if offset+2 > len(buf) {
		return nil, fmt.Errorf("%w: CONNECT truncated before keep alive", ErrMalformedPacket)
	}
	pkt.KeepAlive = binary.BigEndian.Uint16(buf[offset:])
	offset += 2

	props, nProps, err := decodeProperties(buf[offset:])
	if err != nil {
		return nil, fmt.Errorf("CONNECT properties: %w", err)
	}
	pkt.Properties = props
	offset += nProps

	clientID, n, err := decodeString(buf[offset:])
	if err != nil {
		return nil, fmt.Errorf("CONNECT client id: %w", err)
	}
	pkt.ClientID = clientID
	offset += n

	if pkt.WillFlag {
		willProps, nProps, err := decodeProperties(buf[offset:])
		if err != nil {
			return nil, fmt.Errorf("CONNECT will properties: %w", err)
		}
		pkt.WillProperties = willProps
		offset += nProps

		willTopic, n, err := decodeString(buf[offset:])
		if err != nil {
			return nil, fmt.Errorf("CONNECT will topic: %w", err)
		}
		pkt.WillTopic = willTopic
		offset += n

		willMessage, n, err := decodeBinary(buf[offset:])
		if err != nil {
			return nil, fmt.Errorf("CONNECT will message: %w", err)
		}
		pkt.WillMessage = append([]byte(nil), willMessage...)
		offset += n
	}

	if pkt.UsernameFlag {
		username, n, err := decodeString(buf[offset:])
		if err != nil {
			return nil, fmt.Errorf("CONNECT username: %w", err)
		}
		pkt.Username = username
		offset += n
	}

	if pkt.PasswordFlag {
		password, _, err := decodeString(buf[offset:])
		if err != nil {
			return nil, fmt.Errorf("CONNECT password: %w", err)
		}
		pkt.Password = password
	}

	return pkt, nil
}
