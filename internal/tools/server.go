package tools

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"efatura/internal/logger"
)

// maxRequestBytes bounds a single request line. Invoice payloads with many
// line items stay far below this.
const maxRequestBytes = 1 << 20

// Request is one tool call on the wire: a single JSON object per line.
type Request struct {
	Tool      string         `json:"tool"`
	Arguments map[string]any `json:"arguments"`
}

// Response is the reply to one tool call. Text is always human-readable;
// failures are rendered into it rather than reported structurally.
type Response struct {
	Text string `json:"text"`
}

// Server dispatches JSON-lines tool calls from a reader to a writer. It is
// the request/response protocol an external agent drives the tools through,
// normally bound to stdin/stdout.
type Server struct {
	registry *Registry
	in       io.Reader
	out      io.Writer
	log      zerolog.Logger
}

// NewServer creates a dispatch server over the given registry and streams.
func NewServer(registry *Registry, in io.Reader, out io.Writer) *Server {
	return &Server{
		registry: registry,
		in:       in,
		out:      out,
		log:      logger.WithComponent("tools-server"),
	}
}

// Run reads requests line by line until EOF or context cancellation. Every
// line gets exactly one response line; malformed requests are answered with
// a readable error, not a dropped connection.
func (s *Server) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(s.in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRequestBytes)

	s.log.Info().Int("tools", len(s.registry.Tools())).Msg("Tool server listening")

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			if writeErr := s.respond(fmt.Sprintf("Error: invalid request: %v", err)); writeErr != nil {
				return writeErr
			}
			continue
		}

		text := s.registry.Call(ctx, req.Tool, req.Arguments)
		if err := s.respond(text); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading requests: %w", err)
	}
	s.log.Info().Msg("Tool server input closed, shutting down")
	return nil
}

func (s *Server) respond(text string) error {
	encoded, err := json.Marshal(Response{Text: text})
	if err != nil {
		return fmt.Errorf("encoding response: %w", err)
	}
	if _, err := s.out.Write(append(encoded, '\n')); err != nil {
		return fmt.Errorf("writing response: %w", err)
	}
	return nil
}
