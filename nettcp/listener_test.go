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

package nettcp_test

import (
	"fmt"
	"net"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	. "github.com/sabouaram/apostol/nettcp"
)

func freeAddr() string {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	Expect(err).ToNot(HaveOccurred())
	defer func() { _ = l.Close() }()
	return l.Addr().String()
}

var _ = Describe("Listener", func() {
	var addr string

	BeforeEach(func() {
		addr = freeAddr()
	})

	It("accepts a connection made with net.Dial", func() {
		lis, lerr := Listen(addr, ListenOption{})
		Expect(lerr).To(BeNil())
		defer func() { _ = lis.Close() }()

		dialed := make(chan net.Conn, 1)
		go func() {
			c, err := net.DialTimeout("tcp", addr, 2*time.Second)
			Expect(err).ToNot(HaveOccurred())
			dialed <- c
		}()

		var conn Connection
		Eventually(func() bool {
			c, ok, err := lis.Accept()
			Expect(err).To(BeNil())
			if ok {
				conn = c
				return true
			}
			return false
		}, 2*time.Second, 5*time.Millisecond).Should(BeTrue())

		Expect(conn).ToNot(BeNil())
		Expect(conn.PeerAddr()).ToNot(BeEmpty())

		c := <-dialed
		_ = c.Close()
		_ = conn.Close()
	})

	It("returns ok=false instead of blocking when nothing is pending", func() {
		lis, lerr := Listen(addr, ListenOption{})
		Expect(lerr).To(BeNil())
		defer func() { _ = lis.Close() }()

		_, ok, err := lis.Accept()
		Expect(err).To(BeNil())
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("Connection", func() {
	var (
		addr string
		lis  Listener
	)

	BeforeEach(func() {
		addr = freeAddr()
		var err error
		lis, err = Listen(addr, ListenOption{})
		Expect(err).To(BeNil())
	})

	AfterEach(func() {
		_ = lis.Close()
	})

	acceptOne := func() Connection {
		var conn Connection
		Eventually(func() bool {
			c, ok, aerr := lis.Accept()
			Expect(aerr).To(BeNil())
			if ok {
				conn = c
				return true
			}
			return false
		}, 2*time.Second, 5*time.Millisecond).Should(BeTrue())
		return conn
	}

	It("reads data written by a real TCP peer", func() {
		peer, derr := net.DialTimeout("tcp", addr, 2*time.Second)
		Expect(derr).ToNot(HaveOccurred())
		defer func() { _ = peer.Close() }()

		srv := acceptOne()
		defer func() { _ = srv.Close() }()

		_, werr := peer.Write([]byte("ping"))
		Expect(werr).ToNot(HaveOccurred())

		var got []byte
		Eventually(func() int {
			buf := make([]byte, 64)
			n, rerr := srv.Read(buf)
			Expect(rerr).To(BeNil())
			got = append(got, buf[:n]...)
			return len(got)
		}, 2*time.Second, 5*time.Millisecond).Should(Equal(4))

		Expect(string(got)).To(Equal("ping"))
	})

	It("sends a small write at once and reports Flush drained with nothing pending", func() {
		peer, derr := net.DialTimeout("tcp", addr, 2*time.Second)
		Expect(derr).ToNot(HaveOccurred())
		defer func() { _ = peer.Close() }()

		srv := acceptOne()
		defer func() { _ = srv.Close() }()

		big := make([]byte, 8)
		for i := range big {
			big[i] = byte('a' + i)
		}

		n, werr := srv.Write(big)
		Expect(werr).To(BeNil())
		Expect(n).To(Equal(len(big)))

		drained, ferr := srv.Flush()
		Expect(ferr).To(BeNil())
		Expect(drained).To(BeTrue())
		Expect(srv.Pending()).To(BeFalse())

		buf := make([]byte, len(big))
		_, rerr := readFull(peer, buf)
		Expect(rerr).ToNot(HaveOccurred())
		Expect(string(buf)).To(Equal(string(big)))
	})
})

func readFull(c net.Conn, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := c.Read(buf[total:])
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

var _ = Describe("Connect", func() {
	It("initiates a non-blocking outbound connection to a listening peer", func() {
		addr := freeAddr()
		lis, lerr := Listen(addr, ListenOption{})
		Expect(lerr).To(BeNil())
		defer func() { _ = lis.Close() }()

		conn, cerr := Connect(addr)
		Expect(cerr).To(BeNil())
		defer func() { _ = conn.Close() }()

		Eventually(func() bool {
			_, ok, aerr := lis.Accept()
			Expect(aerr).To(BeNil())
			return ok
		}, 2*time.Second, 5*time.Millisecond).Should(BeTrue())
	})

	It("rejects an invalid address", func() {
		_, err := Connect("not-an-address")
		Expect(err).ToNot(BeNil())
	})
})

var _ = Describe("edge cases", func() {
	It("reports a helpful error string on bind failure", func() {
		addr := freeAddr()
		lis, lerr := Listen(addr, ListenOption{})
		Expect(lerr).To(BeNil())
		defer func() { _ = lis.Close() }()

		_, err := Listen(addr, ListenOption{})
		Expect(err).ToNot(BeNil())
		Expect(fmt.Sprint(err)).ToNot(BeEmpty())
	})
})
