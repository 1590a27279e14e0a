package mqbroker

import (
	"net"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/gonzalop/mqbroker/internal/packets"
)

func TestRunAcceptorHandlesOneConnectionEndToEnd(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	tcpLn := ln.(*net.TCPListener)

	settings := NewSettings(WithLogger(discardLogger()))
	shutdown := NewTrigger()
	commands := make(chan Command, 8)
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)

	acceptorDone := make(chan struct{})
	go func() {
		RunAcceptor(tcpLn, commands, settings, shutdown, metrics)
		close(acceptorDone)
	}()

	conn, err := net.Dial("tcp", tcpLn.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if _, err := (&packets.ConnectPacket{ProtocolName: "MQTT", ProtocolLevel: 5, ClientID: "client-1", CleanStart: true}).WriteTo(conn); err != nil {
		t.Fatalf("write connect: %v", err)
	}

	select {
	case cmd := <-commands:
		if cmd.Packet.Type() != packets.CONNECT {
			t.Fatalf("got packet type %d, want CONNECT", cmd.Packet.Type())
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for the accepted connection's CONNECT to arrive")
	}

	if got := testutil.ToFloat64(metrics.ConnectionsAccepted); got != 1 {
		t.Fatalf("ConnectionsAccepted = %v, want 1", got)
	}

	shutdown.Fire()
	select {
	case <-acceptorDone:
	case <-time.After(3 * time.Second):
		t.Fatal("acceptor did not drain and stop after shutdown fired")
	}
}

func TestRunAcceptorStopsWithoutConnections(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	tcpLn := ln.(*net.TCPListener)

	settings := NewSettings(WithLogger(discardLogger()))
	shutdown := NewTrigger()
	commands := make(chan Command, 1)

	done := make(chan struct{})
	go func() {
		RunAcceptor(tcpLn, commands, settings, shutdown, nil)
		close(done)
	}()

	shutdown.Fire()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("acceptor did not stop promptly when shutdown fires with no connections")
	}
}
