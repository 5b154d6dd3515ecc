// Package mcp serves the tool registry as a Model Context Protocol server
// speaking JSON-RPC 2.0 over a byte stream, normally stdio.
package mcp

import (
	"context"
	"io"
	"os"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/alucardeht/antigravity/internal/tools"
)

type Server struct {
	registry *tools.Registry
	handler  *Handler
}

func NewServer(registry *tools.Registry, name, version string) *Server {
	return &Server{
		registry: registry,
		handler:  NewHandler(registry, name, version),
	}
}

func (s *Server) Registry() *tools.Registry {
	return s.registry
}

// Serve handles requests from rwc until the peer disconnects or ctx is
// cancelled. Messages are newline separated JSON objects.
func (s *Server) Serve(ctx context.Context, rwc io.ReadWriteCloser) error {
	stream := jsonrpc2.NewBufferedStream(rwc, jsonrpc2.PlainObjectCodec{})
	conn := jsonrpc2.NewConn(ctx, stream, jsonrpc2.HandlerWithError(s.handler.Handle))
	log.Info("mcp server started", "tools", len(s.registry.Names()))

	select {
	case <-ctx.Done():
		conn.Close()
		<-conn.DisconnectNotify()
		return ctx.Err()
	case <-conn.DisconnectNotify():
		log.Info("mcp client disconnected")
		return nil
	}
}

// ServeStdio serves over the process's standard input and output.
func (s *Server) ServeStdio(ctx context.Context) error {
	return s.Serve(ctx, &stdioReadWriteCloser{reader: os.Stdin, writer: os.Stdout})
}

type stdioReadWriteCloser struct {
	reader io.ReadCloser
	writer io.WriteCloser
}

func (s *stdioReadWriteCloser) Read(p []byte) (int, error) {
	return s.reader.Read(p)
}

func (s *stdioReadWriteCloser) Write(p []byte) (int, error) {
	return s.writer.Write(p)
}

func (s *stdioReadWriteCloser) Close() error {
	rerr := s.reader.Close()
	werr := s.writer.Close()
	if rerr != nil {
		return rerr
	}
	return werr
}
