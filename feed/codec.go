// Package feed bridges a simulator or roadside unit to the signal
// controller over a stream socket. Messages are msgpack bodies behind a
// 4-byte big-endian length prefix; each update is answered with the
// resulting decision on the same connection.
package feed

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// maxMessageSize bounds a single frame to keep a bad peer from forcing
// an arbitrary allocation
const maxMessageSize = 1 << 20

// WriteMessage frames and writes one msgpack-encoded message
func WriteMessage(w io.Writer, v interface{}) error {
	payload, err := msgpack.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding message: %w", err)
	}
	var hdr [4]byte
	binary.BigEndian.PutUint32(hdr[:], uint32(len(payload)))
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	_, err = w.Write(payload)
	return err
}

// ReadMessage reads and decodes one framed msgpack message
func ReadMessage(r io.Reader, v interface{}) error {
	var hdr [4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return err
	}
	length := binary.BigEndian.Uint32(hdr[:])
	if length == 0 {
		return fmt.Errorf("empty frame")
	}
	if length > maxMessageSize {
		return fmt.Errorf("frame of %d bytes exceeds limit", length)
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return err
	}
	return msgpack.Unmarshal(buf, v)
}
