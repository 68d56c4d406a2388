// Package rpc runs synthesis workers in another process, talking net/rpc
// over HTTP. Every client gets a session with its own worker state.
package rpc

import (
	"fmt"
	"net"
	"net/http"
	"net/rpc"
	"sync"

	"github.com/rationalkeyboard/keys/synth"
)

type (
	WorkerServer struct {
		mu       sync.Mutex
		sessions map[int]*session
		nextID   int
	}

	session struct {
		mu      sync.Mutex
		handler synth.Handler
	}

	HandleArgs struct {
		Session int
		Request synth.Request
	}

	// Client is a synth.Transport to a worker served by WorkerServer.
	Client struct {
		client    *rpc.Client
		session   int
		requests  chan synth.Request
		responses chan synth.Response
		quit      chan struct{}
		done      chan struct{}
		closeOnce sync.Once
	}
)

const DefaultAddress = "127.0.0.1:31337"

func NewWorkerServer() *WorkerServer {
	return &WorkerServer{sessions: make(map[int]*session)}
}

// Open starts a new session and returns its id.
func (s *WorkerServer) Open(_ int, id *int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.sessions[s.nextID] = &session{}
	*id = s.nextID
	return nil
}

// Handle processes one request in a session and replies with every response
// it produced, in order.
func (s *WorkerServer) Handle(args HandleArgs, reply *[]synth.Response) error {
	s.mu.Lock()
	sess, ok := s.sessions[args.Session]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown session %d", args.Session)
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	responses := []synth.Response{}
	sess.handler.Handle(args.Request, func(r synth.Response) { responses = append(responses, r) })
	*reply = responses
	return nil
}

func (s *WorkerServer) Close(id int, _ *int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// Serve answers worker requests on l until l is closed.
func Serve(l net.Listener) error {
	server := rpc.NewServer()
	if err := server.RegisterName("Worker", NewWorkerServer()); err != nil {
		return fmt.Errorf("rpc.Register failed: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle(rpc.DefaultRPCPath, server)
	return http.Serve(l, mux)
}

// Dial connects to a worker server and opens a session.
func Dial(address string) (*Client, error) {
	client, err := rpc.DialHTTP("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("rpc.DialHTTP failed: %w", err)
	}
	var id int
	if err := client.Call("Worker.Open", 0, &id); err != nil {
		client.Close()
		return nil, fmt.Errorf("Worker.Open failed: %w", err)
	}
	c := &Client{
		client:    client,
		session:   id,
		requests:  make(chan synth.Request, 16),
		responses: make(chan synth.Response, 16),
		quit:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	go c.run()
	return c, nil
}

// Dialer returns a synth.Dialer connecting to address.
func Dialer(address string) synth.Dialer {
	return func() (synth.Transport, error) {
		return Dial(address)
	}
}

func (c *Client) run() {
	defer close(c.done)
	defer close(c.responses)
	emit := func(r synth.Response) bool {
		select {
		case c.responses <- r:
			return true
		case <-c.quit:
			return false
		}
	}
	for {
		select {
		case <-c.quit:
			return
		case req := <-c.requests:
			var reply []synth.Response
			if err := c.client.Call("Worker.Handle", HandleArgs{Session: c.session, Request: req}, &reply); err != nil {
				reply = []synth.Response{{Type: synth.ErrorResponse, Message: err.Error()}}
			}
			for _, r := range reply {
				if !emit(r) {
					return
				}
			}
		}
	}
}

func (c *Client) Send(req synth.Request) error {
	select {
	case <-c.quit:
		return synth.ErrWorkerClosed
	default:
	}
	select {
	case c.requests <- req:
		return nil
	case <-c.quit:
		return synth.ErrWorkerClosed
	}
}

func (c *Client) Responses() <-chan synth.Response { return c.responses }

func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.quit)
		// closing the client aborts a Handle call stuck on a stalled worker
		c.client.Go("Worker.Close", c.session, new(int), make(chan *rpc.Call, 1))
		err = c.client.Close()
		<-c.done
	})
	return err
}
