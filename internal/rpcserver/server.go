package rpcserver

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"sync"

	"golang.org/x/time/rate"

	"github.com/bnomei/nereid/internal/config"
	"github.com/bnomei/nereid/internal/deltahistory"
	"github.com/bnomei/nereid/internal/model"
)

const maxLineBytes = 8 * 1024 * 1024

// diagramState pairs a loaded diagram with its own bounded delta history,
// so get_delta can serve callers that fell behind the live apply_ops stream.
type diagramState struct {
	diagram *model.Diagram
	history *deltahistory.History
}

// walkthroughState mirrors diagramState for walkthroughs.
type walkthroughState struct {
	walkthrough *model.Walkthrough
	history     *deltahistory.WalkthroughHistory
}

// sessionState is one session folder this server has loaded into memory.
// A single mutex guards every mutation across its diagrams and
// walkthroughs: apply_ops batches are already all-or-nothing per diagram,
// and the rest of the API (save, get_delta) reads the same state, so there
// is no benefit to finer-grained locking at this server's scale.
type sessionState struct {
	mu           sync.Mutex
	root         string
	session      *model.Session
	diagrams     map[string]*diagramState
	walkthroughs map[string]*walkthroughState
}

// Server holds every session folder this process has loaded and dispatches
// JSON-RPC 2.0 requests against them.
type Server struct {
	mu         sync.Mutex
	sessions   map[string]*sessionState
	durability config.Durability

	// limit and burst configure a fresh token bucket per accepted
	// connection, throttling that connection's apply_ops calls.
	limit rate.Limit
	burst int
}

// New returns a Server that persists session folders with durability and
// rate-limits each connection's apply_ops calls to limit (as a sustained
// rate) with the given burst allowance.
func New(durability config.Durability, limit rate.Limit, burst int) *Server {
	return &Server{
		sessions:   make(map[string]*sessionState),
		durability: durability,
		limit:      limit,
		burst:      burst,
	}
}

// Serve accepts connections on ln until it returns an error (typically
// because ln was closed), handling each on its own goroutine.
func (s *Server) Serve(ln net.Listener) error {
	for {
		conn, err := ln.Accept()
		if err != nil {
			return fmt.Errorf("rpcserver: accept: %w", err)
		}
		go s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	limiter := rate.NewLimiter(s.limit, s.burst)
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		resp := s.handleLine(append([]byte(nil), line...), limiter)
		data, err := json.Marshal(resp)
		if err != nil {
			log.Printf("rpcserver: marshal response: %v", err)
			continue
		}
		if _, err := conn.Write(append(data, '\n')); err != nil {
			log.Printf("rpcserver: write response: %v", err)
			return
		}
	}
	if err := scanner.Err(); err != nil {
		log.Printf("rpcserver: connection read error: %v", err)
	}
}

func (s *Server) handleLine(line []byte, limiter *rate.Limiter) JSONRPCResponse {
	var req JSONRPCRequest
	if err := json.Unmarshal(line, &req); err != nil {
		return errorResponse(nil, codeParseError, fmt.Sprintf("parse request: %v", err))
	}
	if req.Method == "" {
		return errorResponse(req.ID, codeInvalidRequest, "missing method")
	}

	if req.Method == "apply_ops" && !limiter.Allow() {
		return errorResponse(req.ID, codeRateLimited, "apply_ops rate limit exceeded on this connection")
	}

	switch req.Method {
	case "load_session":
		return s.handleLoadSession(req)
	case "save_session":
		return s.handleSaveSession(req)
	case "apply_ops":
		return s.handleApplyOps(req)
	case "get_delta":
		return s.handleGetDelta(req)
	default:
		return errorResponse(req.ID, codeMethodNotFound, fmt.Sprintf("unknown method %q", req.Method))
	}
}

func (s *Server) sessionFor(root string) (*sessionState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.sessions[root]
	return st, ok
}
