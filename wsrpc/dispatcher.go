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
	liberr "github.com/sabouaram/apostol/errors"
	"github.com/sabouaram/apostol/websocket"
)

// ResultHandler receives the outcome of one Call this side issued, keyed
// by the id that Call was sent with.
type ResultHandler func(payload []byte)

// ErrorHandler receives a CallError answering a Call this side issued.
type ErrorHandler func(code int, message string)

// ActionHandler answers an incoming Call for one Action name. When reply
// is false, no CallResult/CallError is sent back.
type ActionHandler func(id string, payload []byte) (msg Message, reply bool)

// Dispatcher correlates outgoing Calls with their eventual CallResult or
// CallError by id, and routes incoming Calls to a registered ActionHandler
// by Action name. It is grounded on CMessageManager/CMessageHandler's
// id-keyed pairing, reimplemented as a plain map since a Dispatcher is
// only ever touched from the single goroutine running its owning
// connection's event loop callbacks -- no locking is needed.
type Dispatcher struct {
	conn     *websocket.Connection
	pending  map[string]pendingCall
	handlers map[string]ActionHandler
	nextID   uint64
}

type pendingCall struct {
	onResult ResultHandler
	onError  ErrorHandler
}

// NewDispatcher builds a Dispatcher that sends and receives over conn.
func NewDispatcher(conn *websocket.Connection) *Dispatcher {
	return &Dispatcher{
		conn:     conn,
		pending:  make(map[string]pendingCall),
		handlers: make(map[string]ActionHandler),
	}
}

// Handle registers the ActionHandler invoked for an incoming Call whose
// Action matches name.
func (d *Dispatcher) Handle(name string, h ActionHandler) {
	d.handlers[name] = h
}

// Call sends a TypeCall envelope for action carrying payload, and arranges
// for onResult/onError to be invoked when the matching CallResult/CallError
// arrives. It returns the generated id.
func (d *Dispatcher) Call(action string, payload []byte, onResult ResultHandler, onError ErrorHandler) (string, liberr.Error) {
	d.nextID++
	id := formatID(d.nextID)

	d.pending[id] = pendingCall{onResult: onResult, onError: onError}

	return id, d.send(Call(id, action, payload))
}

// Dispatch decodes one incoming text-frame payload and routes it: a Call
// is handed to the registered ActionHandler (and its reply, if any, is
// sent back automatically); a CallResult/CallError is matched against a
// pending Call by id and the pending entry is removed.
func (d *Dispatcher) Dispatch(raw []byte) liberr.Error {
	msg, err := Decode(raw)
	if err != nil {
		return err
	}

	switch msg.Type {
	case TypeCall:
		return d.dispatchCall(msg)
	case TypeCallResult:
		return d.dispatchResult(msg)
	case TypeCallError:
		return d.dispatchError(msg)
	case TypeOpen, TypeClose:
		// session lifecycle notifications carry no reply obligation
		return nil
	default:
		return liberr.New(ErrUnknownType, "unhandled wsrpc message type", nil)
	}
}

func (d *Dispatcher) dispatchCall(msg Message) liberr.Error {
	h, ok := d.handlers[msg.Action]
	if !ok {
		return d.send(CallError(msg.ID, int(ErrUnknownID), "no handler for action: "+msg.Action))
	}

	reply, ok := h(msg.ID, msg.Payload)
	if !ok {
		return nil
	}
	return d.send(reply)
}

func (d *Dispatcher) dispatchResult(msg Message) liberr.Error {
	p, ok := d.pending[msg.ID]
	if !ok {
		return liberr.New(ErrUnknownID, "call result for unknown id: "+msg.ID, nil)
	}
	delete(d.pending, msg.ID)
	if p.onResult != nil {
		p.onResult(msg.Payload)
	}
	return nil
}

func (d *Dispatcher) dispatchError(msg Message) liberr.Error {
	p, ok := d.pending[msg.ID]
	if !ok {
		return liberr.New(ErrUnknownID, "call error for unknown id: "+msg.ID, nil)
	}
	delete(d.pending, msg.ID)
	if p.onError != nil {
		p.onError(msg.ErrorCode, msg.ErrorMessage)
	}
	return nil
}

func (d *Dispatcher) send(msg Message) liberr.Error {
	out, err := Encode(msg)
	if err != nil {
		return err
	}
	return d.conn.SendText(out)
}

func formatID(n uint64) string {
	const digits = "0123456789abcdef"
	if n == 0 {
		return "0"
	}
	buf := make([]byte, 0, 16)
	for n > 0 {
		buf = append([]byte{digits[n%16]}, buf...)
		n /= 16
	}
	return string(buf)
}
