// Package ssdp implements one-shot SSDP discovery: broadcast a single
// M-SEARCH query to the well-known multicast group, then drain responses
// until a read times out, deduplicating senders by address.
package ssdp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

const (
	// MulticastGroup is the SSDP rendezvous address.
	MulticastGroup = "239.255.255.250"
	// Port is the SSDP rendezvous port.
	Port = 1900
	// RokuServiceTarget is the search target advertised by Roku devices.
	RokuServiceTarget = "roku:ecp"
	// DefaultTimeout bounds each read while collecting responses.
	DefaultTimeout = 5 * time.Second

	// Largest possible UDP payload.
	bufferSize = 65507
)

// DiscoverRoku finds Roku devices on the local network. It returns the
// distinct sender addresses of every reply carrying the Roku service marker,
// in first-seen order. An empty result is not an error.
func DiscoverRoku(timeout time.Duration) ([]string, error) {
	return Discover(RokuServiceTarget, timeout)
}

// Discover broadcasts one M-SEARCH for the given service target and collects
// responses until a read times out. The read deadline is refreshed on every
// successful receive, so there is no overall deadline; total wait time is
// bounded only by timeout plus the spacing of incoming replies.
func Discover(target string, timeout time.Duration) ([]string, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	conn, err := listenPacket()
	if err != nil {
		return nil, fmt.Errorf("open discovery socket: %w", err)
	}
	defer conn.Close()

	dst := &net.UDPAddr{IP: net.ParseIP(MulticastGroup), Port: Port}
	if _, err := conn.WriteTo(searchRequest(target), dst); err != nil {
		return nil, fmt.Errorf("send discovery request: %w", err)
	}

	return collect(conn, target, timeout)
}

// searchRequest builds the M-SEARCH payload for a service target.
func searchRequest(target string) []byte {
	var b strings.Builder
	b.WriteString("M-SEARCH * HTTP/1.1\r\n")
	b.WriteString("HOST: " + MulticastGroup + ":" + strconv.Itoa(Port) + "\r\n")
	b.WriteString("MAN: \"ssdp:discover\"\r\n")
	b.WriteString("MX: 1\r\n")
	b.WriteString("ST: " + target + "\r\n\r\n")
	return []byte(b.String())
}

// collect reads datagrams from conn until a read times out. Replies
// containing the service marker contribute their sender address once,
// preserving arrival order; everything else is ignored.
func collect(conn net.PacketConn, marker string, timeout time.Duration) ([]string, error) {
	var addrs []string
	seen := make(map[string]bool)
	buf := make([]byte, bufferSize)

	for {
		if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
			return nil, err
		}
		n, sender, err := conn.ReadFrom(buf)
		if err != nil {
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				// The sole normal terminator.
				return addrs, nil
			}
			return nil, err
		}

		if !strings.Contains(string(buf[:n]), marker) {
			continue
		}
		host := senderHost(sender)
		if host == "" || seen[host] {
			continue
		}
		seen[host] = true
		addrs = append(addrs, host)
	}
}

// senderHost extracts the IP portion of a sender address.
func senderHost(addr net.Addr) string {
	if ua, ok := addr.(*net.UDPAddr); ok {
		return ua.IP.String()
	}
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}
	return host
}

// listenPacket opens a UDP socket on an ephemeral port with SO_REUSEADDR set
// so multiple discoverers can coexist on one host.
func listenPacket() (net.PacketConn, error) {
	lc := net.ListenConfig{
		Control: func(network, address string, c syscall.RawConn) error {
			var optErr error
			err := c.Control(func(fd uintptr) {
				optErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
			})
			if err != nil {
				return err
			}
			return optErr
		},
	}
	return lc.ListenPacket(context.Background(), "udp4", ":0")
}
