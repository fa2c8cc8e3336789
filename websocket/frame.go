/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package websocket

import (
	"crypto/rand"
	"encoding/binary"

	liberr "github.com/sabouaram/apostol/errors"
)

// Message is one reassembled, defragmented WebSocket message. Opcode is
// that of the first frame in the fragment sequence (OpText or OpBinary),
// or the control opcode for PING/PONG/CLOSE, which are never fragmented.
type Message struct {
	Opcode  Opcode
	Payload []byte
}

type frameHeader struct {
	fin     bool
	opcode  Opcode
	masked  bool
	maskKey [4]byte
	length  uint64
}

// Parser incrementally decodes a byte stream of RFC 6455 frames into
// reassembled messages. Feed may be called with arbitrarily small slices,
// including one byte at a time.
type Parser struct {
	buf []byte

	haveHeader bool
	hdr        frameHeader

	assembling bool
	msgOpcode  Opcode
	msgBuf     []byte
}

// NewParser builds an empty incremental frame parser.
func NewParser() *Parser {
	return &Parser{}
}

// Feed appends data and returns every message that became complete.
func (p *Parser) Feed(data []byte) ([]Message, liberr.Error) {
	p.buf = append(p.buf, data...)

	var out []Message

	for {
		if !p.haveHeader {
			hdr, consumed, ok, err := parseHeader(p.buf)
			if err != nil {
				return out, err
			}
			if !ok {
				return out, nil
			}
			p.hdr = hdr
			p.buf = p.buf[consumed:]
			p.haveHeader = true
		}

		if p.hdr.length > MaxMessageBytes {
			return out, liberr.New(ErrFrameTooLarge, "frame payload exceeds maximum", nil)
		}

		if uint64(len(p.buf)) < p.hdr.length {
			return out, nil
		}

		payload := make([]byte, p.hdr.length)
		copy(payload, p.buf[:p.hdr.length])
		p.buf = p.buf[p.hdr.length:]

		if p.hdr.masked {
			unmask(payload, p.hdr.maskKey)
		}

		hdr := p.hdr
		p.haveHeader = false
		p.hdr = frameHeader{}

		if hdr.opcode.isControl() {
			out = append(out, Message{Opcode: hdr.opcode, Payload: payload})
			continue
		}

		if hdr.opcode != OpContinuation {
			p.assembling = true
			p.msgOpcode = hdr.opcode
			p.msgBuf = append(p.msgBuf[:0], payload...)
		} else if p.assembling {
			if uint64(len(p.msgBuf))+uint64(len(payload)) > MaxMessageBytes {
				return out, liberr.New(ErrFrameTooLarge, "message payload exceeds maximum", nil)
			}
			p.msgBuf = append(p.msgBuf, payload...)
		}

		if hdr.fin && p.assembling {
			complete := make([]byte, len(p.msgBuf))
			copy(complete, p.msgBuf)
			out = append(out, Message{Opcode: p.msgOpcode, Payload: complete})
			p.assembling = false
			p.msgBuf = nil
		}
	}
}

func parseHeader(buf []byte) (hdr frameHeader, consumed int, ok bool, err liberr.Error) {
	if len(buf) < 2 {
		return frameHeader{}, 0, false, nil
	}

	b0, b1 := buf[0], buf[1]

	hdr.fin = b0&0x80 != 0
	if b0&0x70 != 0 {
		return frameHeader{}, 0, false, liberr.New(ErrMalformedFrame, "reserved bits set", nil)
	}
	hdr.opcode = Opcode(b0 & 0x0F)

	hdr.masked = b1&0x80 != 0
	lenBits := b1 & 0x7F

	pos := 2
	switch {
	case lenBits <= 125:
		hdr.length = uint64(lenBits)
	case lenBits == 126:
		if len(buf) < pos+2 {
			return frameHeader{}, 0, false, nil
		}
		hdr.length = uint64(binary.BigEndian.Uint16(buf[pos : pos+2]))
		pos += 2
	default: // 127
		if len(buf) < pos+8 {
			return frameHeader{}, 0, false, nil
		}
		v := binary.BigEndian.Uint64(buf[pos : pos+8])
		if v&(1<<63) != 0 {
			return frameHeader{}, 0, false, liberr.New(ErrMalformedFrame, "payload length high bit set", nil)
		}
		hdr.length = v
		pos += 8
	}

	if hdr.opcode.isControl() && hdr.length > 125 {
		return frameHeader{}, 0, false, liberr.New(ErrMalformedFrame, "control frame payload too large", nil)
	}
	if hdr.opcode.isControl() && !hdr.fin {
		return frameHeader{}, 0, false, liberr.New(ErrMalformedFrame, "fragmented control frame", nil)
	}

	if hdr.masked {
		if len(buf) < pos+4 {
			return frameHeader{}, 0, false, nil
		}
		copy(hdr.maskKey[:], buf[pos:pos+4])
		pos += 4
	}

	return hdr, pos, true, nil
}

func unmask(payload []byte, key [4]byte) {
	for i := range payload {
		payload[i] ^= key[i%4]
	}
}

// encodeFrame builds one complete, unfragmented frame. masked selects the
// client-to-server wire form with a 4-byte mask key; server frames are sent
// unmasked.
func encodeFrame(fin bool, opcode Opcode, payload []byte, masked bool) []byte {
	var b0 byte
	if fin {
		b0 |= 0x80
	}
	b0 |= byte(opcode)

	var head []byte
	head = append(head, b0)

	length := len(payload)
	maskBit := byte(0)
	if masked {
		maskBit = 0x80
	}

	switch {
	case length <= 125:
		head = append(head, maskBit|byte(length))
	case length <= 0xFFFF:
		head = append(head, maskBit|126)
		var lb [2]byte
		binary.BigEndian.PutUint16(lb[:], uint16(length))
		head = append(head, lb[:]...)
	default:
		head = append(head, maskBit|127)
		var lb [8]byte
		binary.BigEndian.PutUint64(lb[:], uint64(length))
		head = append(head, lb[:]...)
	}

	if masked {
		var key [4]byte
		_, _ = rand.Read(key[:])
		head = append(head, key[:]...)

		out := make([]byte, 0, len(head)+length)
		out = append(out, head...)
		maskedPayload := make([]byte, length)
		copy(maskedPayload, payload)
		unmask(maskedPayload, key)
		return append(out, maskedPayload...)
	}

	out := make([]byte, 0, len(head)+length)
	out = append(out, head...)
	return append(out, payload...)
}
