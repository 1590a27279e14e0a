package packets

import "errors"

// ReasonCode is an MQTT v5.0 reason code, carried by CONNACK, SUBACK, and
// DISCONNECT packets to describe the outcome of an operation. Values 0x00-0x7F
// indicate success, 0x80-0xFF indicate failure.
type ReasonCode uint8

const (
	ReasonSuccess                   ReasonCode = 0x00
	ReasonNormalDisconnect          ReasonCode = 0x00
	ReasonDisconnectWithWill        ReasonCode = 0x04
	ReasonUnspecifiedError          ReasonCode = 0x80
	ReasonMalformedPacket           ReasonCode = 0x81
	ReasonProtocolError             ReasonCode = 0x82
	ReasonImplementationSpecific    ReasonCode = 0x83
	ReasonBadAuthenticationMethod   ReasonCode = 0x8C
	ReasonNotAuthorized             ReasonCode = 0x87
	ReasonServerBusy                ReasonCode = 0x89
	ReasonServerShuttingDown        ReasonCode = 0x8B
	ReasonKeepAliveTimeout          ReasonCode = 0x8D
	ReasonSessionTakenOver          ReasonCode = 0x8E
	ReasonTopicFilterInvalid        ReasonCode = 0x90
	ReasonTopicNameInvalid          ReasonCode = 0x91
	ReasonReceiveMaximumExceeded    ReasonCode = 0x93
	ReasonTopicAliasInvalid         ReasonCode = 0x94
	ReasonPacketTooLarge            ReasonCode = 0x95
	ReasonMessageRateTooHigh        ReasonCode = 0x96
	ReasonQuotaExceeded             ReasonCode = 0x97
	ReasonAdministrativeAction      ReasonCode = 0x98
	ReasonPayloadFormatInvalid      ReasonCode = 0x99
	ReasonRetainNotSupported        ReasonCode = 0x9A
	ReasonQoSNotSupported           ReasonCode = 0x9B
	ReasonUseAnotherServer          ReasonCode = 0x9C
	ReasonServerMoved               ReasonCode = 0x9D
	ReasonSharedSubNotSupported     ReasonCode = 0x9E
	ReasonConnectionRateExceeded    ReasonCode = 0x9F
	ReasonMaximumConnectTime        ReasonCode = 0xA0
	ReasonSubscriptionIDNotSupp     ReasonCode = 0xA1
	ReasonWildcardSubNotSupported   ReasonCode = 0xA2
)

var reasonNames = map[ReasonCode]string{
	ReasonSuccess:                 "Success",
	ReasonDisconnectWithWill:      "DisconnectWithWillMessage",
	ReasonUnspecifiedError:        "UnspecifiedError",
	ReasonMalformedPacket:         "MalformedPacket",
	ReasonProtocolError:           "ProtocolError",
	ReasonImplementationSpecific:  "ImplementationSpecificError",
	ReasonBadAuthenticationMethod: "BadAuthenticationMethod",
	ReasonNotAuthorized:           "NotAuthorized",
	ReasonServerBusy:              "ServerBusy",
	ReasonServerShuttingDown:      "ServerShuttingDown",
	ReasonKeepAliveTimeout:        "KeepAliveTimeout",
	ReasonSessionTakenOver:        "SessionTakenOver",
	ReasonTopicFilterInvalid:      "TopicFilterInvalid",
	ReasonTopicNameInvalid:        "TopicNameInvalid",
	ReasonReceiveMaximumExceeded:  "ReceiveMaximumExceeded",
	ReasonTopicAliasInvalid:       "TopicAliasInvalid",
	ReasonPacketTooLarge:          "PacketTooLarge",
	ReasonMessageRateTooHigh:      "MessageRateTooHigh",
	ReasonQuotaExceeded:           "QuotaExceeded",
	ReasonAdministrativeAction:    "AdministrativeAction",
	ReasonPayloadFormatInvalid:    "PayloadFormatInvalid",
	ReasonRetainNotSupported:      "RetainNotSupported",
	ReasonQoSNotSupported:         "QoSNotSupported",
	ReasonUseAnotherServer:        "UseAnotherServer",
	ReasonServerMoved:             "ServerMoved",
	ReasonSharedSubNotSupported:   "SharedSubscriptionsNotSupported",
	ReasonConnectionRateExceeded:  "ConnectionRateExceeded",
	ReasonMaximumConnectTime:      "MaximumConnectTime",
	ReasonSubscriptionIDNotSupp:   "SubscriptionIdentifiersNotSupported",
	ReasonWildcardSubNotSupported: "WildcardSubscriptionsNotSupported",
}

func (r ReasonCode) String() string {
	if name, ok := reasonNames[r]; ok {
		return name
	}
	return "Unknown"
}

// ReasonCodeForDecodeError maps a decode-time error returned by this package
// to the reason code a Disconnect should carry. Anything that isn't one of
// the two classified sentinels is reported as UnspecifiedError.
func ReasonCodeForDecodeError(err error) ReasonCode {
	switch {
	case errors.Is(err, ErrMalformedPacket):
		return ReasonMalformedPacket
	case errors.Is(err, ErrProtocolError):
		return ReasonProtocolError
	default:
		return ReasonUnspecifiedError
	}
}
