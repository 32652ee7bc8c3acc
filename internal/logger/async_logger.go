// Copyright 2026 The duplicityfs Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// AsyncLogger decouples log writers from the underlying sink (typically
// a rotating file) by buffering writes on a channel and draining them
// from a single goroutine, so a slow or blocked disk never stalls a
// FUSE op handler. A full buffer drops the message rather than
// blocking the caller.
type AsyncLogger struct {
	dst  io.WriteCloser
	msgs chan []byte
	done chan struct{}
	wg   sync.WaitGroup
}

// NewAsyncLogger starts a writer goroutine draining into dst, buffering
// up to bufferSize pending messages.
func NewAsyncLogger(dst io.WriteCloser, bufferSize int) *AsyncLogger {
	l := &AsyncLogger{
		dst:  dst,
		msgs: make(chan []byte, bufferSize),
		done: make(chan struct{}),
	}
	l.wg.Add(1)
	go l.run()
	return l
}

func (l *AsyncLogger) run() {
	defer l.wg.Done()
	for {
		select {
		case msg, ok := <-l.msgs:
			if !ok {
				return
			}
			if _, err := l.dst.Write(msg); err != nil {
				fmt.Fprintf(os.Stderr, "asynclogger: write failed: %v\n", err)
			}
		case <-l.done:
			// Drain whatever is already queued before exiting.
			for {
				select {
				case msg := <-l.msgs:
					if _, err := l.dst.Write(msg); err != nil {
						fmt.Fprintf(os.Stderr, "asynclogger: write failed: %v\n", err)
					}
				default:
					return
				}
			}
		}
	}
}

// Write copies p and enqueues it, dropping the message if the buffer is
// full rather than blocking the caller.
func (l *AsyncLogger) Write(p []byte) (int, error) {
	buf := make([]byte, len(p))
	copy(buf, p)
	select {
	case l.msgs <- buf:
	default:
		fmt.Fprintln(os.Stderr, "asynclogger: log buffer is full, dropping message.")
	}
	return len(p), nil
}

// Close signals the writer goroutine, waits for the queued backlog to
// drain, and closes the underlying sink. Write does not check for Close:
// a message written after Close is still queued and reported as written,
// but never reaches the sink.
func (l *AsyncLogger) Close() error {
	close(l.done)
	l.wg.Wait()
	return l.dst.Close()
}
