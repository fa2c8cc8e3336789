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

package wsrpc

import (
	"encoding/json"

	liberr "github.com/sabouaram/apostol/errors"
)

// Message is the decoded form of the wire envelope. Payload is kept as
// raw JSON so a handler can unmarshal it into whatever shape the Action
// expects, mirroring CWSMessage's CJSON Payload field.
type Message struct {
	Type         Type
	ID           string
	Action       string
	ErrorCode    int
	ErrorMessage string
	Payload      json.RawMessage
}

// wireMessage is the single-letter-keyed shape the original protocol uses
// on the wire: t/u/a/c/m/p for Type/UniqueId/Action/ErrorCode/ErrorMessage/
// Payload.
type wireMessage struct {
	Type         Type            `json:"t"`
	ID           string          `json:"u,omitempty"`
	Action       string          `json:"a,omitempty"`
	ErrorCode    int             `json:"c,omitempty"`
	ErrorMessage string          `json:"m,omitempty"`
	Payload      json.RawMessage `json:"p,omitempty"`
}

// Decode parses one text-frame payload into a Message.
func Decode(raw []byte) (Message, liberr.Error) {
	var w wireMessage
	if err := json.Unmarshal(raw, &w); err != nil {
		return Message{}, liberr.New(ErrMalformedEnvelope, "decode wsrpc envelope", err)
	}

	switch w.Type {
	case TypeOpen, TypeClose, TypeCall, TypeCallResult, TypeCallError:
	default:
		return Message{}, liberr.New(ErrUnknownType, "unknown wsrpc message type", nil)
	}

	return Message{
		Type:         w.Type,
		ID:           w.ID,
		Action:       w.Action,
		ErrorCode:    w.ErrorCode,
		ErrorMessage: w.ErrorMessage,
		Payload:      w.Payload,
	}, nil
}

// Encode serializes a Message to the single-letter-keyed wire form.
func Encode(m Message) ([]byte, liberr.Error) {
	w := wireMessage{
		Type:         m.Type,
		ID:           m.ID,
		Action:       m.Action,
		ErrorCode:    m.ErrorCode,
		ErrorMessage: m.ErrorMessage,
		Payload:      m.Payload,
	}

	out, err := json.Marshal(w)
	if err != nil {
		return nil, liberr.New(ErrMalformedEnvelope, "encode wsrpc envelope", err)
	}
	return out, nil
}

// Call builds a TypeCall Message addressed to Action, carrying Payload.
func Call(id, action string, payload json.RawMessage) Message {
	return Message{Type: TypeCall, ID: id, Action: action, Payload: payload}
}

// CallResult builds a TypeCallResult Message answering the Call with id.
func CallResult(id string, payload json.RawMessage) Message {
	return Message{Type: TypeCallResult, ID: id, Payload: payload}
}

// CallError builds a TypeCallError Message answering the Call with id.
func CallError(id string, code int, message string) Message {
	return Message{Type: TypeCallError, ID: id, ErrorCode: code, ErrorMessage: message}
}
