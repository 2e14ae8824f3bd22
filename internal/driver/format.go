package driver

import (
	"fmt"
	"net"
	"strings"
	"unicode/utf8"

	"github.com/omochice/tcp-listener/internal/receiver"
)

// Format renders a chunk as one piece of output. The first chunk of a
// connection is prefixed with the peer host and the terminal chunk ends
// the line. Pretty mode prints valid UTF-8 as text; everything else is
// printed as a quoted byte string.
func Format(c receiver.Chunk, pretty bool) string {
	var b strings.Builder
	if c.Seq == 0 {
		fmt.Fprintf(&b, "[%s] ", PeerHost(c.Peer))
	}
	if pretty && utf8.Valid(c.Data) {
		b.Write(c.Data)
	} else {
		fmt.Fprintf(&b, "%q", c.Data)
	}
	if c.Last {
		b.WriteByte('\n')
	}
	return b.String()
}

// PeerHost returns the host part of a peer address.
func PeerHost(addr net.Addr) string {
	switch a := addr.(type) {
	case nil:
		return "unknown"
	case *net.TCPAddr:
		return a.IP.String()
	}
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}
	return host
}
