// Package scpi implements a SCPI session over a raw TCP socket, the
// "socket" transport most LAN instruments expose on port 5025.
package scpi

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	// DefaultPort is the conventional raw SCPI socket port.
	DefaultPort = 5025
	// DefaultTimeout bounds each operation when the context has no deadline.
	DefaultTimeout = 60 * time.Second
	// DefaultMaxBlock caps the payload of a definite-length block.
	DefaultMaxBlock = 20 << 20
	// TrailerLen is the number of terminator bytes Siglent scopes send
	// after a block ("\n\n").
	TrailerLen = 2

	// maxBlockPrefix bounds the text preceding '#' in a block response.
	maxBlockPrefix = 64
)

// ErrBlockFormat is returned when a block response is not a valid
// IEEE 488.2 definite-length block.
var ErrBlockFormat = errors.New("malformed block response")

// Option configures a Conn.
type Option func(*Conn)

// WithTimeout sets the per-operation timeout used when the context carries
// no deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Conn) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithMaxBlock sets the largest accepted block payload in bytes.
func WithMaxBlock(n int) Option {
	return func(c *Conn) {
		if n > 0 {
			c.maxBlock = n
		}
	}
}

// WithTrailerLen sets the number of terminator bytes read after a block
// payload, for instruments that end blocks with a single newline (1) or
// none (0). Values outside 0..TrailerLen are ignored.
func WithTrailerLen(n int) Option {
	return func(c *Conn) {
		if n >= 0 && n <= TrailerLen {
			c.trailer = n
		}
	}
}

// WithLogger sets the logger for command tracing.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Conn) {
		c.log = l
	}
}

// Conn is a SCPI session on a stream connection. It is not safe for
// concurrent use; an instrument handles one conversation at a time.
type Conn struct {
	conn     net.Conn
	r        *bufio.Reader
	timeout  time.Duration
	maxBlock int
	trailer  int
	log      zerolog.Logger
}

// Dial connects to addr ("host" or "host:port"; the port defaults to 5025).
func Dial(ctx context.Context, addr string, opts ...Option) (*Conn, error) {
	if _, _, err := net.SplitHostPort(addr); err != nil {
		addr = net.JoinHostPort(addr, strconv.Itoa(DefaultPort))
	}

	var d net.Dialer

	nc, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("scpi dial %s: %w", addr, err)
	}

	c := New(nc, opts...)
	c.log.Debug().Str("addr", addr).Msg("scpi connected")

	return c, nil
}

// New wraps an established connection.
func New(nc net.Conn, opts ...Option) *Conn {
	c := &Conn{
		conn:     nc,
		r:        bufio.NewReaderSize(nc, 64<<10),
		timeout:  DefaultTimeout,
		maxBlock: DefaultMaxBlock,
		trailer:  TrailerLen,
		log:      zerolog.Nop(),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	return c
}

// Close closes the underlying connection.
func (c *Conn) Close() error {
	return c.conn.Close()
}

// Write sends a command terminated by a newline.
func (c *Conn) Write(ctx context.Context, cmd string) error {
	done, err := c.arm(ctx)
	if err != nil {
		return err
	}
	defer done()

	c.log.Debug().Str("cmd", cmd).Msg("scpi write")

	if _, err := io.WriteString(c.conn, cmd+"\n"); err != nil {
		return c.wrap(ctx, "write "+cmd, err)
	}

	return nil
}

// Query sends cmd and returns the response line without its terminator.
func (c *Conn) Query(ctx context.Context, cmd string) (string, error) {
	if err := c.Write(ctx, cmd); err != nil {
		return "", err
	}

	done, err := c.arm(ctx)
	if err != nil {
		return "", err
	}
	defer done()

	line, err := c.r.ReadString('\n')
	if err != nil {
		return "", c.wrap(ctx, "read "+cmd, err)
	}

	resp := strings.TrimRight(line, "\r\n")
	c.log.Debug().Str("cmd", cmd).Str("resp", resp).Msg("scpi query")

	return resp, nil
}

// ReadRaw reads one definite-length block response: any text up to '#',
// the length header, the payload and the terminator bytes. All of it is
// returned verbatim.
//
// Exactly TrailerLen terminator bytes are expected unless WithTrailerLen says
// otherwise; an instrument that sends fewer leaves ReadRaw waiting until the
// operation deadline. waveform.Decode relies on the two byte trailer.
func (c *Conn) ReadRaw(ctx context.Context) ([]byte, error) {
	done, err := c.arm(ctx)
	if err != nil {
		return nil, err
	}
	defer done()

	prefix, err := c.r.ReadSlice('#')
	if err != nil {
		if errors.Is(err, bufio.ErrBufferFull) || len(prefix) > maxBlockPrefix {
			return nil, fmt.Errorf("%w: no '#' in block prefix", ErrBlockFormat)
		}
		return nil, c.wrap(ctx, "read block", err)
	}

	if len(prefix) > maxBlockPrefix {
		return nil, fmt.Errorf("%w: block prefix of %d bytes", ErrBlockFormat, len(prefix))
	}

	out := append([]byte(nil), prefix...)

	nd, err := c.r.ReadByte()
	if err != nil {
		return nil, c.wrap(ctx, "read block", err)
	}

	if nd < '1' || nd > '9' {
		return nil, fmt.Errorf("%w: length digit count %q", ErrBlockFormat, nd)
	}

	digits := make([]byte, int(nd-'0'))
	if _, err := io.ReadFull(c.r, digits); err != nil {
		return nil, c.wrap(ctx, "read block", err)
	}

	size, err := strconv.Atoi(string(digits))
	if err != nil || size < 0 {
		return nil, fmt.Errorf("%w: length %q", ErrBlockFormat, digits)
	}

	if size > c.maxBlock {
		return nil, fmt.Errorf("%w: length %d exceeds limit %d", ErrBlockFormat, size, c.maxBlock)
	}

	out = append(out, nd)
	out = append(out, digits...)

	start := len(out)
	out = append(out, make([]byte, size+c.trailer)...)

	if _, err := io.ReadFull(c.r, out[start:]); err != nil {
		return nil, c.wrap(ctx, "read block", err)
	}

	c.log.Debug().Int("bytes", size).Msg("scpi block")

	return out, nil
}

// arm applies the context deadline, or the default timeout, to the
// connection and interrupts blocked I/O when ctx is canceled.
func (c *Conn) arm(ctx context.Context) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(c.timeout)
	}

	if err := c.conn.SetDeadline(deadline); err != nil {
		return nil, fmt.Errorf("scpi set deadline: %w", err)
	}

	stop := context.AfterFunc(ctx, func() {
		_ = c.conn.SetDeadline(time.Now())
	})

	return func() { stop() }, nil
}

// wrap prefers the context error when cancellation or the context deadline
// caused err.
func (c *Conn) wrap(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("scpi %s: %w", op, ctxErr)
	}

	if errors.Is(err, os.ErrDeadlineExceeded) {
		if d, ok := ctx.Deadline(); ok && !time.Now().Before(d) {
			return fmt.Errorf("scpi %s: %w", op, context.DeadlineExceeded)
		}
	}

	return fmt.Errorf("scpi %s: %w", op, err)
}
