package flow

import (
	"fmt"
	"time"
)

// Fanout delivers every submitted value to all subscribed sinks. One
// dispatch goroutine owns the sink set, so sinks are never called
// concurrently.
type Fanout[T any] struct {
	input      chan T
	register   chan AwaitDone[Sink[T]]
	unregister chan AwaitDone[Sink[T]]
	sinks      map[Sink[T]]bool

	submitTimeout time.Duration
	inBufSize     int
	logger        Logger
}

type Option[T any] interface {
	apply(*Fanout[T])
}

type buffered[T any] struct {
	Size int
}

func (b *buffered[T]) apply(f *Fanout[T]) {
	f.inBufSize = b.Size
}

func Buffered[T any](size int) Option[T] {
	return &buffered[T]{size}
}

type withLogger[T any] struct {
	Logger Logger
}

func (l *withLogger[T]) apply(f *Fanout[T]) {
	f.logger = l.Logger
}

func WithLogger[T any](logger Logger) Option[T] {
	return &withLogger[T]{logger}
}

func NewFanout[T any](opts ...Option[T]) *Fanout[T] {
	fanout := &Fanout[T]{
		submitTimeout: 1 * time.Second,
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt.apply(fanout)
	}

	fanout.input = make(chan T, fanout.inBufSize)
	fanout.register = make(chan AwaitDone[Sink[T]])
	fanout.unregister = make(chan AwaitDone[Sink[T]])
	fanout.sinks = make(map[Sink[T]]bool)

	go fanout.run()

	return fanout
}

func (f *Fanout[T]) run() {
	defer func() {
		for sink := range f.sinks {
			delete(f.sinks, sink)
			sink.Close()
		}
	}()

	for {
		select {
		case v := <-f.input:
			for sink := range f.sinks {
				if err := sink.Submit(v); err != nil {
					f.error("error submitting value %v: %v", v, err)
				}
			}
		case ar, ok := <-f.register:
			if !ok {
				return
			}
			f.sinks[ar.value] = true
			ar.reply <- struct{}{}
		case ar := <-f.unregister:
			sink := ar.value
			delete(f.sinks, sink)
			sink.Close()
			ar.reply <- struct{}{}
		}
	}
}

func (f *Fanout[T]) error(format string, args ...any) error {
	if f.logger != nil {
		f.logger.Info(format, args...)
	}
	return fmt.Errorf(format, args...)
}

func (f *Fanout[T]) Close() {
	close(f.register)
}

func (f *Fanout[T]) Submit(v T) error {
	select {
	case f.input <- v:
		return nil
	case <-time.After(f.submitTimeout):
		return f.error("timed out submitting value %v after %s", v, f.submitTimeout)
	}
}

func (f *Fanout[T]) Subscribe(sink Sink[T]) CancelFunc {
	ar := NewAwaitDone(sink)
	f.register <- ar
	ar.Wait()

	return func() {
		ar := NewAwaitDone(sink)
		f.unregister <- ar
		ar.Wait()
	}
}
