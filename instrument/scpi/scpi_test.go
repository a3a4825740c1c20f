package scpi

import (
	"bufio"
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeInstrument answers each received line through handle until the
// connection closes.
func fakeInstrument(t *testing.T, handle func(cmd string) []byte) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		nc, err := ln.Accept()
		if err != nil {
			return
		}
		defer nc.Close()

		r := bufio.NewReader(nc)
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}

			if resp := handle(strings.TrimSpace(line)); resp != nil {
				if _, err := nc.Write(resp); err != nil {
					return
				}
			}
		}
	}()

	return ln.Addr().String()
}

func pipe(t *testing.T, opts ...Option) (*Conn, net.Conn) {
	t.Helper()

	a, b := net.Pipe()
	t.Cleanup(func() {
		_ = a.Close()
		_ = b.Close()
	})

	return New(a, opts...), b
}

func TestDialQuery(t *testing.T) {
	addr := fakeInstrument(t, func(cmd string) []byte {
		switch cmd {
		case "*IDN?":
			return []byte("Siglent Technologies,SDS1102X,SDS1XAAA000000,7.6.1.15\n")
		case "C1:VDIV?":
			return []byte("2.00E-01\r\n")
		}
		return nil
	})

	ctx := context.Background()

	c, err := Dial(ctx, addr, WithTimeout(2*time.Second))
	require.NoError(t, err)
	defer c.Close()

	idn, err := c.Query(ctx, "*IDN?")
	require.NoError(t, err)
	assert.Equal(t, "Siglent Technologies,SDS1102X,SDS1XAAA000000,7.6.1.15", idn)

	require.NoError(t, c.Write(ctx, "CHDR OFF"))

	vdiv, err := c.Query(ctx, "C1:VDIV?")
	require.NoError(t, err)
	assert.Equal(t, "2.00E-01", vdiv)
}

func TestDialDefaultsPort(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	// nothing listens on the default port of a TEST-NET address; the dial
	// must fail with the port appended rather than an address parse error
	_, err := Dial(ctx, "192.0.2.1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "192.0.2.1:5025")
}

func TestReadRawBlock(t *testing.T) {
	payload := []byte{0x00, 0x7F, 0x80, 0xFF, '#', '\n'}

	addr := fakeInstrument(t, func(cmd string) []byte {
		if cmd != "C1:WF? DAT2" {
			return nil
		}
		resp := []byte("DAT2,#9000000006")
		resp = append(resp, payload...)
		return append(resp, '\n', '\n')
	})

	ctx := context.Background()

	c, err := Dial(ctx, addr)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Write(ctx, "C1:WF? DAT2"))

	raw, err := c.ReadRaw(ctx)
	require.NoError(t, err)

	want := append([]byte("DAT2,#9000000006"), payload...)
	want = append(want, '\n', '\n')
	assert.Equal(t, want, raw)
}

func TestReadRawShortTrailer(t *testing.T) {
	block := []byte("#14abcd\n")

	c, peer := pipe(t, WithTrailerLen(1))
	go func() { _, _ = peer.Write(block) }()

	raw, err := c.ReadRaw(context.Background())
	require.NoError(t, err)
	assert.Equal(t, block, raw)

	// With the default two byte trailer the missing byte is waited for.
	c, peer = pipe(t)
	go func() { _, _ = peer.Write(block) }()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = c.ReadRaw(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestReadRawNoTrailer(t *testing.T) {
	c, peer := pipe(t, WithTrailerLen(0), WithTrailerLen(3))
	go func() { _, _ = peer.Write([]byte("#12ok")) }()

	raw, err := c.ReadRaw(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte("#12ok"), raw)
}

func TestReadRawRejectsBadHeaders(t *testing.T) {
	cases := map[string]string{
		"zero digit count": "#0",
		"non digit count":  "#x",
		"bad length":       "#2a1",
		"too long prefix":  strings.Repeat("A", 100) + "#11x\n\n",
	}

	for name, resp := range cases {
		t.Run(name, func(t *testing.T) {
			c, peer := pipe(t, WithTimeout(time.Second))
			go func() { _, _ = peer.Write([]byte(resp)) }()

			_, err := c.ReadRaw(context.Background())
			require.ErrorIs(t, err, ErrBlockFormat)
		})
	}
}

func TestReadRawLimit(t *testing.T) {
	c, peer := pipe(t, WithMaxBlock(4), WithTimeout(time.Second))
	go func() { _, _ = peer.Write([]byte("#15")) }()

	_, err := c.ReadRaw(context.Background())
	require.ErrorIs(t, err, ErrBlockFormat)
}

func TestQueryHonorsContext(t *testing.T) {
	c, peer := pipe(t)

	go func() {
		r := bufio.NewReader(peer)
		_, _ = r.ReadString('\n')
		// never answer
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Query(ctx, "SARA?")
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCanceledContext(t *testing.T) {
	c, _ := pipe(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, c.Write(ctx, "TDIV?"), context.Canceled)

	_, err := c.ReadRaw(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
