// Package mqbroker implements the core of a single-node MQTT v5 broker: a
// concurrent connection engine (Acceptor, per-connection Reader/Writer
// tasks), a single-consumer Command Loop, a Session Registry with takeover
// semantics, CONNECT/CONNACK negotiation, an exact-match Subscription
// Table, and a one-shot Shutdown Trigger.
//
// Only QoS 0 publishing, no retained messages, no topic wildcards or shared
// subscriptions, and no enhanced authentication are supported; see Settings
// and BuildConnack for what this broker advertises to clients.
package mqbroker
