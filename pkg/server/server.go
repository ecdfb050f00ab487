// Package server adapts the command registry to the wire protocol
// using github.com/tidwall/redcon, the RESP server loop grounded on
// the tile38 references in the example pack (the only pack entries
// implementing this exact protocol). It is the one concrete
// implementation of the "external codec" spec.md §4.6 treats as a
// boundary the core never imports.
package server

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/tidwall/redcon"

	"github.com/kass/spatio/pkg/command"
)

// Server runs a redcon listener that decodes each connection's
// commands, dispatches them through a command.Registry, and encodes
// the Reply back onto the wire.
type Server struct {
	addr     string
	registry *command.Registry
	timeout  time.Duration
	log      zerolog.Logger
}

// New builds a Server listening on addr ("host:port"), dispatching to
// registry, and bounding each command's context by timeout.
func New(addr string, registry *command.Registry, timeout time.Duration, log zerolog.Logger) *Server {
	return &Server{
		addr:     addr,
		registry: registry,
		timeout:  timeout,
		log:      log.With().Str("component", "server").Logger(),
	}
}

// ListenAndServe blocks, serving connections until the listener fails
// or the process is signaled to stop. A bind failure is a Fatal error
// per spec.md §6's exit code policy; the caller is expected to exit
// non-zero on a non-nil return.
func (s *Server) ListenAndServe() error {
	s.log.Info().Str("addr", s.addr).Msg("listening")
	return redcon.ListenAndServe(s.addr, s.handleCommand, s.handleAccept, s.handleClosed)
}

func (s *Server) handleAccept(conn redcon.Conn) bool {
	s.log.Debug().Str("remote", conn.RemoteAddr()).Msg("connection accepted")
	return true
}

func (s *Server) handleClosed(conn redcon.Conn, err error) {
	if err != nil {
		s.log.Debug().Str("remote", conn.RemoteAddr()).Err(err).Msg("connection closed")
	}
}

func (s *Server) handleCommand(conn redcon.Conn, cmd redcon.Command) {
	if len(cmd.Args) == 0 {
		conn.WriteError("ERR empty command")
		return
	}
	name := string(cmd.Args[0])
	args := make([]string, len(cmd.Args)-1)
	for i, a := range cmd.Args[1:] {
		args[i] = string(a)
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	reply := s.registry.Dispatch(ctx, name, args)
	writeReply(conn, reply)
	s.log.Debug().Str("cmd", name).Str("remote", conn.RemoteAddr()).Msg("command processed")

	if reply.CloseAfter {
		conn.Close()
	}
}

func writeReply(conn redcon.Conn, reply command.Reply) {
	switch reply.Kind {
	case command.KindSimpleString:
		conn.WriteString(reply.Str)
	case command.KindBulkString:
		conn.WriteBulkString(reply.Str)
	case command.KindInteger:
		conn.WriteInt64(reply.Int)
	case command.KindNil:
		conn.WriteNull()
	case command.KindError:
		conn.WriteError(reply.Str)
	case command.KindArray:
		conn.WriteArray(len(reply.Array))
		for _, item := range reply.Array {
			writeReply(conn, item)
		}
	}
}
