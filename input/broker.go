// Package input delivers lines of text from a reader to the core, one line
// per request, on behalf of both the program and the debugger console.
package input

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// Broker reads lines from a reader in the background and queues them until
// they are asked for. The queue has no upper bound so the reader never waits
// on the core.
type Broker struct {
	reader *bufio.Reader

	mu       sync.Mutex
	queue    []string
	received uint64
	closed   bool
	err      error

	wake     chan struct{}
	closedCh chan struct{}
	stopCh   chan struct{}
	done     chan struct{}

	started sync.Once
	stopped sync.Once
	closing sync.Once
}

// NewBroker creates a broker that reads from r once started.
func NewBroker(r io.Reader) *Broker {
	return &Broker{
		reader:   bufio.NewReader(r),
		wake:     make(chan struct{}, 1),
		closedCh: make(chan struct{}),
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins reading in a goroutine. The broker stops when ctx is done.
// Calling Start more than once has no effect.
func (b *Broker) Start(ctx context.Context) {
	b.started.Do(func() {
		go b.readLoop()
		go b.watch(ctx)
	})
}

func (b *Broker) watch(ctx context.Context) {
	select {
	case <-ctx.Done():
		b.close(ctx.Err())
	case <-b.closedCh:
	}
}

func (b *Broker) readLoop() {
	defer close(b.done)

	for {
		line, err := b.reader.ReadString('\n')
		if len(line) > 0 {
			b.push(trimNewline(line))
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				err = nil
			}

			b.close(err)

			return
		}

		select {
		case <-b.stopCh:
			return
		default:
		}
	}
}

func trimNewline(line string) string {
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r")
}

func (b *Broker) push(line string) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}

	b.queue = append(b.queue, line)
	b.received++
	b.mu.Unlock()

	select {
	case b.wake <- struct{}{}:
	default:
	}
}

func (b *Broker) close(err error) {
	b.closing.Do(func() {
		b.mu.Lock()
		b.closed = true
		b.err = err
		queued := len(b.queue)
		b.mu.Unlock()

		slog.Debug("InputClosed", "Queued", queued, "Err", err)

		close(b.closedCh)
	})
}

// ReadLine returns the next line without its line ending. It blocks until a
// line arrives, the broker closes or ctx is done. Once the broker has closed
// and the queued lines are used up, ReadLine returns io.EOF, or the error
// that stopped the reader.
func (b *Broker) ReadLine(ctx context.Context) (string, error) {
	for {
		b.mu.Lock()
		if len(b.queue) > 0 {
			line := b.queue[0]
			b.queue[0] = ""
			b.queue = b.queue[1:]
			b.mu.Unlock()

			return line, nil
		}

		if b.closed {
			err := b.err
			b.mu.Unlock()

			if err == nil {
				err = io.EOF
			}

			return "", err
		}
		b.mu.Unlock()

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-b.wake:
		case <-b.closedCh:
		}
	}
}

// Stop closes the broker. Lines already queued can still be read. A reader
// blocked in a read call is left behind and exits with the process.
func (b *Broker) Stop() {
	b.stopped.Do(func() {
		close(b.stopCh)
	})
	b.close(nil)
}

// Done is closed when the reading goroutine has exited.
func (b *Broker) Done() <-chan struct{} {
	return b.done
}

// Received returns the number of lines read so far.
func (b *Broker) Received() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.received
}

// Lines returns the number of lines waiting to be read.
func (b *Broker) Lines() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.queue)
}
