package mqbroker

import (
	"log/slog"

	"github.com/gonzalop/mqbroker/internal/packets"
)

// Settings holds the broker's immutable-after-build configuration. A
// Settings value is built once, through functional options, and then
// shared read-only by every task.
type Settings struct {
	SessionExpiryInterval      uint32
	SessionExpirySet           bool
	ForceSessionExpiryInterval bool

	ReceiveMaximum uint16

	MaximumQoS QoS

	RetainEnabled bool

	MaximumPacketSize uint32
	MaximumPacketSet  bool

	TopicAliasMaximum uint16

	KeepAlive      uint16
	ForceKeepAlive bool

	BindAddress string

	OutboundQueueSize int
	CommandQueueSize  int

	MetricsEnabled bool
	MetricsAddr    string

	Logger *slog.Logger
}

// SettingOption mutates a Settings value under construction, mirroring the
// reference client library's Option/clientOptions functional-options
// pattern.
type SettingOption func(*Settings)

// NewSettings builds a Settings value from sane defaults plus the given
// options.
func NewSettings(opts ...SettingOption) *Settings {
	s := &Settings{
		MaximumQoS:        AtMostOnce,
		RetainEnabled:     false,
		TopicAliasMaximum: 0,
		BindAddress:       ":1883",
		OutboundQueueSize: 64,
		CommandQueueSize:  256,
		Logger:            slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WithBindAddress sets the "host:port" string the Acceptor listens on.
func WithBindAddress(addr string) SettingOption {
	return func(s *Settings) { s.BindAddress = addr }
}

// WithKeepAlive sets the keep-alive interval in seconds; 0 disables the
// keep-alive timeout entirely.
func WithKeepAlive(seconds uint16) SettingOption {
	return func(s *Settings) { s.KeepAlive = seconds }
}

// WithForceKeepAlive makes the CONNACK builder always override the
// client-requested keep-alive with the configured one.
func WithForceKeepAlive(force bool) SettingOption {
	return func(s *Settings) { s.ForceKeepAlive = force }
}

// WithSessionExpiryInterval sets the session expiry interval the broker
// reports, and marks it as explicitly configured.
func WithSessionExpiryInterval(seconds uint32) SettingOption {
	return func(s *Settings) {
		s.SessionExpiryInterval = seconds
		s.SessionExpirySet = true
	}
}

// WithForceSessionExpiryInterval makes the CONNACK builder always use the
// configured session expiry interval rather than the client's.
func WithForceSessionExpiryInterval(force bool) SettingOption {
	return func(s *Settings) { s.ForceSessionExpiryInterval = force }
}

// WithReceiveMaximum sets the receive maximum the broker advertises. Only 0
// is a valid value for this broker (see IsValid); anything else fails
// startup validation, since QoS 1/2 flow control is a non-goal.
func WithReceiveMaximum(max uint16) SettingOption {
	return func(s *Settings) { s.ReceiveMaximum = max }
}

// WithMaximumPacketSize sets an advertised inbound packet size cap.
func WithMaximumPacketSize(size uint32) SettingOption {
	return func(s *Settings) {
		s.MaximumPacketSize = size
		s.MaximumPacketSet = true
	}
}

// WithOutboundQueueSize sets the capacity of each peer's outbound packet
// channel.
func WithOutboundQueueSize(n int) SettingOption {
	return func(s *Settings) { s.OutboundQueueSize = n }
}

// WithCommandQueueSize sets the capacity of the shared Command channel.
func WithCommandQueueSize(n int) SettingOption {
	return func(s *Settings) { s.CommandQueueSize = n }
}

// WithMetrics enables the broker's Prometheus metrics and the address the
// reference binary serves them on.
func WithMetrics(enabled bool, addr string) SettingOption {
	return func(s *Settings) {
		s.MetricsEnabled = enabled
		s.MetricsAddr = addr
	}
}

// WithLogger sets the *slog.Logger every task logs through.
func WithLogger(logger *slog.Logger) SettingOption {
	return func(s *Settings) {
		if logger != nil {
			s.Logger = logger
		}
	}
}

// IsValid reports whether s describes a configuration this broker can
// actually run with, logging each violation it finds. This broker only
// supports a narrow slice of the MQTT v5 feature surface (QoS 0, no topic
// aliasing, no retained messages), so IsValid enforces those limits rather
// than silently downgrading a richer request.
func (s *Settings) IsValid() bool {
	valid := true
	fail := func(msg string, args ...any) {
		s.Logger.Error("invalid broker settings: "+msg, args...)
		valid = false
	}

	if s.SessionExpirySet && s.SessionExpiryInterval != 0xFFFFFFFF {
		fail("session_expiry_interval must be unset or 0xFFFFFFFF", "got", s.SessionExpiryInterval)
	}
	if s.ReceiveMaximum != 0 {
		fail("receive_maximum must be 0", "got", s.ReceiveMaximum)
	}
	if s.MaximumQoS != AtMostOnce {
		fail("maximum_qos must be AtMostOnce", "got", s.MaximumQoS)
	}
	if s.RetainEnabled {
		fail("retain_enabled must be false")
	}
	if s.MaximumPacketSet {
		fail("maximum_packet_size must be unset")
	}
	if s.TopicAliasMaximum != 0 {
		fail("topic_alias_maximum must be 0", "got", s.TopicAliasMaximum)
	}
	if s.BindAddress == "" {
		fail("bind_address must not be empty")
	}
	return valid
}

// min32 and min16 are small numeric helpers used by BuildConnack.
func min32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}

func min16(a, b uint16) uint16 {
	if a < b {
		return a
	}
	return b
}

// BuildConnack computes the CONNACK this broker sends in response to
// connect, given the broker's settings. It never sets SessionPresent; the
// CONNECT control handler overrides that field once it knows whether an
// existing session was reused.
func BuildConnack(s *Settings, connect *packets.ConnectPacket) *packets.ConnackPacket {
	props := &packets.Properties{
		RetainAvailable:                 s.RetainEnabled,
		WildcardSubscriptionAvailable:   false,
		SubscriptionIdentifierAvailable: false,
		SharedSubscriptionAvailable:     false,
		Presence: packets.PresRetainAvailable |
			packets.PresWildcardSubscriptionAvailable |
			packets.PresSubscriptionIdentifierAvailable |
			packets.PresSharedSubscriptionAvailable |
			packets.PresReceiveMaximum |
			packets.PresMaximumQoS |
			packets.PresTopicAliasMaximum,
		ReceiveMaximum:    min16(s.ReceiveMaximum, clientReceiveMaximum(connect)),
		MaximumQoS:        uint8(s.MaximumQoS),
		TopicAliasMaximum: min16(s.TopicAliasMaximum, clientTopicAliasMaximum(connect)),
	}

	if s.ForceSessionExpiryInterval {
		props.SessionExpiryInterval = s.SessionExpiryInterval
		props.Presence |= packets.PresSessionExpiryInterval
	} else if connect.Properties != nil && connect.Properties.Presence&packets.PresSessionExpiryInterval != 0 {
		props.SessionExpiryInterval = connect.Properties.SessionExpiryInterval
		props.Presence |= packets.PresSessionExpiryInterval
	} else if s.SessionExpirySet {
		props.SessionExpiryInterval = s.SessionExpiryInterval
		props.Presence |= packets.PresSessionExpiryInterval
	}

	clientMax, clientHasMax := clientMaximumPacketSize(connect)
	switch {
	case s.MaximumPacketSet && clientHasMax:
		props.MaximumPacketSize = min32(s.MaximumPacketSize, clientMax)
		props.Presence |= packets.PresMaximumPacketSize
	case s.MaximumPacketSet:
		props.MaximumPacketSize = s.MaximumPacketSize
		props.Presence |= packets.PresMaximumPacketSize
	case clientHasMax:
		props.MaximumPacketSize = clientMax
		props.Presence |= packets.PresMaximumPacketSize
	}

	if connect.ClientID == "" {
		props.AssignedClientIdentifier = newAssignedClientID()
		props.Presence |= packets.PresAssignedClientIdentifier
	}

	if s.ForceKeepAlive {
		props.ServerKeepAlive = s.KeepAlive
		props.Presence |= packets.PresServerKeepAlive
	}

	reason := packets.ReasonSuccess
	if connect.Username != "" || (connect.Properties != nil && connect.Properties.Presence&packets.PresAuthenticationMethod != 0) {
		reason = packets.ReasonBadAuthenticationMethod
		props.ReasonString = "enhanced authentication is not supported"
		props.Presence |= packets.PresReasonString
	}

	return &packets.ConnackPacket{
		SessionPresent: false,
		ReasonCode:     reason,
		Properties:     props,
	}
}

func clientTopicAliasMaximum(connect *packets.ConnectPacket) uint16 {
	if connect.Properties != nil && connect.Properties.Presence&packets.PresTopicAliasMaximum != 0 {
		return connect.Properties.TopicAliasMaximum
	}
	return 0
}

func clientReceiveMaximum(connect *packets.ConnectPacket) uint16 {
	if connect.Properties != nil && connect.Properties.Presence&packets.PresReceiveMaximum != 0 {
		return connect.Properties.ReceiveMaximum
	}
	return 65535
}

func clientMaximumPacketSize(connect *packets.ConnectPacket) (uint32, bool) {
	if connect.Properties != nil && connect.Properties.Presence&packets.PresMaximumPacketSize != 0 {
		return connect.Properties.MaximumPacketSize, true
	}
	return 0, false
}

// effectiveClientID returns the CONNACK's assigned client id, or the
// CONNECT's own client id if none was assigned.
func effectiveClientID(connect *packets.ConnectPacket, connack *packets.ConnackPacket) string {
	if connack.Properties != nil && connack.Properties.Presence&packets.PresAssignedClientIdentifier != 0 {
		return connack.Properties.AssignedClientIdentifier
	}
	return connect.ClientID
}
