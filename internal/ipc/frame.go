// Package ipc implements the length-prefixed, typed message transport
// between the loom client and server, generalizing the two-frame-type
// attach protocol in h2's internal/session/attach.go into the full
// ClientToServer/ServerToClient wire vocabulary.
package ipc

import (
	"encoding/binary"
	"fmt"
	"io"
)

// FrameType tags the payload that follows the length prefix.
type FrameType byte

const (
	// FrameData carries raw bytes: PTY input/output or a Render payload,
	// not itself further framed.
	FrameData FrameType = iota
	// FrameControl carries a JSON-encoded Envelope (§ protocol.go).
	FrameControl
)

// maxFrameSize guards against a corrupt or hostile length prefix turning
// into an out-of-memory allocation.
const maxFrameSize = 64 << 20 // 64 MiB

// WriteFrame writes a single length-prefixed frame: 4-byte big-endian
// length (of type byte + payload), 1 type byte, then payload.
func WriteFrame(w io.Writer, ft FrameType, payload []byte) error {
	header := make([]byte, 5)
	binary.BigEndian.PutUint32(header, uint32(len(payload)+1))
	header[4] = byte(ft)
	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("write frame header: %w", err)
	}
	if len(payload) > 0 {
		if _, err := w.Write(payload); err != nil {
			return fmt.Errorf("write frame payload: %w", err)
		}
	}
	return nil
}

// ReadFrame reads a single length-prefixed frame written by WriteFrame.
func ReadFrame(r io.Reader) (FrameType, []byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return 0, nil, err
	}
	total := binary.BigEndian.Uint32(lenBuf[:])
	if total == 0 || total > maxFrameSize {
		return 0, nil, fmt.Errorf("read frame: invalid length %d", total)
	}
	body := make([]byte, total)
	if _, err := io.ReadFull(r, body); err != nil {
		return 0, nil, fmt.Errorf("read frame body: %w", err)
	}
	return FrameType(body[0]), body[1:], nil
}
