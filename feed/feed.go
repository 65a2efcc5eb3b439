package feed

import (
	"context"
	"errors"
	"net"
	"sync"

	"github.com/samber/lo"

	"github.com/anggasct/greenwave"
	"github.com/anggasct/greenwave/server"
)

// LaneCount is one per-lane sample in an update message
type LaneCount struct {
	Lane      string `msgpack:"lane"`
	Normal    int    `msgpack:"normal"`
	Emergency int    `msgpack:"emergency"`
}

// Update is the message a feed peer sends to request a decision cycle
type Update struct {
	Readings []LaneCount `msgpack:"readings"`
}

// LaneState is the per-lane entry of a result message
type LaneState struct {
	Phase string `msgpack:"phase"`
	Wait  int    `msgpack:"wait"`
}

// Result is the message answering an update
type Result struct {
	Status    string               `msgpack:"status"`
	Error     string               `msgpack:"error,omitempty"`
	Cycle     int                  `msgpack:"cycle"`
	Chosen    string               `msgpack:"chosen"`
	GreenTime float64              `msgpack:"greenTime"`
	Emergency bool                 `msgpack:"emergency"`
	Held      bool                 `msgpack:"held"`
	Lanes     map[string]LaneState `msgpack:"lanes"`
}

// Server answers framed update messages using a managed controller
type Server struct {
	manager *server.Manager

	mutex    sync.Mutex
	listener net.Listener
	conns    map[net.Conn]struct{}
	closed   bool
}

// NewServer creates a feed server over the given manager
func NewServer(manager *server.Manager) *Server {
	return &Server{manager: manager, conns: make(map[net.Conn]struct{})}
}

// Serve accepts connections on the listener until Close. Each
// connection runs its own request loop; a decode or write error ends
// only that connection.
func (s *Server) Serve(listener net.Listener) error {
	s.mutex.Lock()
	if s.closed {
		s.mutex.Unlock()
		return errors.New("feed server is closed")
	}
	s.listener = listener
	s.mutex.Unlock()

	for {
		conn, err := listener.Accept()
		if err != nil {
			s.mutex.Lock()
			closed := s.closed
			s.mutex.Unlock()
			if closed {
				return nil
			}
			return err
		}
		s.track(conn)
		go func() {
			defer s.untrack(conn)
			s.handleConn(conn)
		}()
	}
}

// Close stops accepting and tears down every open connection
func (s *Server) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	var err error
	if s.listener != nil {
		err = s.listener.Close()
	}
	for conn := range s.conns {
		conn.Close()
	}
	return err
}

func (s *Server) track(conn net.Conn) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.conns[conn] = struct{}{}
}

func (s *Server) untrack(conn net.Conn) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.conns, conn)
	conn.Close()
}

// handleConn answers update messages until the peer disconnects
func (s *Server) handleConn(conn net.Conn) {
	for {
		var update Update
		if err := ReadMessage(conn, &update); err != nil {
			return
		}

		result := s.apply(update)
		if err := WriteMessage(conn, result); err != nil {
			return
		}
	}
}

// apply runs one decision cycle and shapes the wire result
func (s *Server) apply(update Update) Result {
	readings := lo.Map(update.Readings, func(c LaneCount, _ int) greenwave.Reading {
		return greenwave.Reading{LaneID: c.Lane, Normal: c.Normal, Emergency: c.Emergency}
	})

	decision, err := s.manager.Apply(readings)
	if err != nil {
		return Result{Status: "error", Error: err.Error()}
	}

	lanes := make(map[string]LaneState, len(decision.Lanes))
	for id, status := range decision.Lanes {
		lanes[id] = LaneState{Phase: status.Phase.String(), Wait: status.Wait}
	}
	return Result{
		Status:    "success",
		Cycle:     decision.Cycle,
		Chosen:    decision.Chosen,
		GreenTime: decision.GreenTime,
		Emergency: decision.Emergency,
		Held:      decision.Held,
		Lanes:     lanes,
	}
}

// Client is the peer side of the feed protocol
type Client struct {
	conn  net.Conn
	mutex sync.Mutex
}

// Dial connects a client to a feed server
func Dial(ctx context.Context, network, address string) (*Client, error) {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, network, address)
	if err != nil {
		return nil, err
	}
	return NewClient(conn), nil
}

// NewClient wraps an established connection
func NewClient(conn net.Conn) *Client {
	return &Client{conn: conn}
}

// Send submits one update and waits for the matching result. Calls are
// serialized; the protocol has one outstanding request per connection.
func (c *Client) Send(update Update) (*Result, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if err := WriteMessage(c.conn, update); err != nil {
		return nil, err
	}
	var result Result
	if err := ReadMessage(c.conn, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Close closes the underlying connection
func (c *Client) Close() error {
	return c.conn.Close()
}
