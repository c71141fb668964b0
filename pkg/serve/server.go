// Package serve runs a Normalizer as a long-lived NDJSON server: requests
// arrive one per line on the input and every request gets one response line.
package serve

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/praetorian-inc/linenorm"
	"github.com/praetorian-inc/linenorm/pkg/matcher"
)

// Version is the server protocol version
const Version = "1.0.0"

// MaxRequestSize bounds one request line.
const MaxRequestSize = 64 << 20

// Server normalizes request payloads with a single Normalizer.
type Server struct {
	normalizer *linenorm.Normalizer
	encoder    *json.Encoder
	scanner    *bufio.Scanner
	logger     *log.Logger
}

// incoming is one request line, or the reason it could not be decoded.
type incoming struct {
	req Request
	err error
}

// NewServer creates a new streaming server. Payload content is normalized as
// a whole stream, so callers usually enable WithFlushTrailing on n.
func NewServer(n *linenorm.Normalizer, in io.Reader, out io.Writer) *Server {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), MaxRequestSize)
	return &Server{
		normalizer: n,
		encoder:    json.NewEncoder(out),
		scanner:    scanner,
		logger:     log.New(io.Discard),
	}
}

// SetLogger sets the logger for request diagnostics.
func (s *Server) SetLogger(logger *log.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Run starts the server main loop. A line that is not a valid request gets a
// "decode" error response and the loop continues with the next line.
func (s *Server) Run(ctx context.Context) error {
	s.sendReady()

	reqChan := make(chan incoming, 1)
	errChan := make(chan error, 1)

	go func() {
		for s.scanner.Scan() {
			line := bytes.TrimSpace(s.scanner.Bytes())
			if len(line) == 0 {
				continue
			}
			var in incoming
			in.err = json.Unmarshal(line, &in.req)
			select {
			case reqChan <- in:
			case <-ctx.Done():
				return
			}
		}
		err := s.scanner.Err()
		if err == nil {
			err = io.EOF
		}
		errChan <- err
	}()

	// Process requests until input closes or context cancels
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errChan:
			// Drain any pending request before handling EOF
			for {
				select {
				case in := <-reqChan:
					if s.processIncoming(ctx, in) {
						return nil
					}
				default:
					if err == io.EOF {
						return nil
					}
					s.sendError("decode", err.Error())
					return nil
				}
			}
		case in := <-reqChan:
			if s.processIncoming(ctx, in) {
				return nil
			}
		}
	}
}

func (s *Server) processIncoming(ctx context.Context, in incoming) bool {
	if in.err != nil {
		s.sendError("decode", in.err.Error())
		return false
	}
	return s.processRequest(ctx, in.req)
}

// processRequest handles a single request and returns true if the server should exit
func (s *Server) processRequest(ctx context.Context, req Request) bool {
	s.logger.Debug("request", "type", req.Type)

	switch req.Type {
	case "normalize":
		s.handleNormalize(ctx, req.Payload)
	case "normalize_batch":
		s.handleNormalizeBatch(ctx, req.Payload)
	case "patterns":
		s.handlePatterns()
	case "close":
		return true
	default:
		s.sendError("unknown", "unknown request type: "+req.Type)
	}
	return false
}

func (s *Server) sendReady() {
	s.send("ready", ReadyData{Version: Version, Engine: matcher.EngineInfo()})
}

func (s *Server) handleNormalize(ctx context.Context, payload json.RawMessage) {
	var p NormalizePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		s.sendError("normalize", err.Error())
		return
	}

	result, err := s.normalize(ctx, p)
	if err != nil {
		s.sendError("normalize", err.Error())
		return
	}
	s.send("normalize", result)
}

// handleNormalizeBatch reports per-item failures inside the result so one bad
// item does not fail the batch.
func (s *Server) handleNormalizeBatch(ctx context.Context, payload json.RawMessage) {
	var p NormalizeBatchPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		s.sendError("normalize_batch", err.Error())
		return
	}

	results := make([]NormalizeResult, 0, len(p.Items))
	for _, item := range p.Items {
		result, err := s.normalize(ctx, item)
		if err != nil {
			result = NormalizeResult{Source: item.Source, Lines: []LineResult{}, Error: err.Error()}
		}
		results = append(results, result)
	}
	s.send("normalize_batch", results)
}

func (s *Server) handlePatterns() {
	s.send("patterns", Patterns(s.normalizer))
}

func (s *Server) normalize(ctx context.Context, p NormalizePayload) (NormalizeResult, error) {
	return Normalize(ctx, s.normalizer, p)
}

// Normalize runs n over the payload content and converts the lines to their
// wire form. Sections are never null.
func Normalize(ctx context.Context, n *linenorm.Normalizer, p NormalizePayload) (NormalizeResult, error) {
	result := NormalizeResult{Source: p.Source, Lines: []LineResult{}}

	var r io.Reader = strings.NewReader(p.Content)
	if len(p.Raw) > 0 {
		r = bytes.NewReader(p.Raw)
	}

	err := n.Stream(ctx, r, func(lines []linenorm.Line) error {
		for i := range lines {
			l := &lines[i]
			sections := l.Sections
			if sections == nil {
				sections = []linenorm.Section{}
			}
			result.Lines = append(result.Lines, LineResult{
				Number:   l.Number,
				Offset:   l.Offset,
				Text:     string(l.Text),
				Raw:      rawBytes(l.Text),
				Template: l.Template(n.Placeholder),
				Shape:    l.Shape().Hex(),
				Sections: sections,
			})
		}
		return nil
	})
	if err != nil {
		return NormalizeResult{}, err
	}
	return result, nil
}

// rawBytes copies text when a JSON string cannot carry it unchanged.
func rawBytes(text []byte) []byte {
	if utf8.Valid(text) {
		return nil
	}
	return bytes.Clone(text)
}

// Patterns lists the patterns of n in id order.
func Patterns(n *linenorm.Normalizer) []PatternInfo {
	defs := n.Patterns()
	infos := make([]PatternInfo, 0, len(defs))
	for _, d := range defs {
		infos = append(infos, PatternInfo{ID: d.ID, Name: d.Name, Placeholder: d.Placeholder})
	}
	return infos
}

func (s *Server) send(reqType string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.sendError(reqType, err.Error())
		return
	}
	s.encoder.Encode(Response{
		Success: true,
		Type:    reqType,
		Data:    data,
	})
}

func (s *Server) sendError(reqType, msg string) {
	s.logger.Debug("request failed", "type", reqType, "err", msg)
	s.encoder.Encode(Response{
		Success: false,
		Type:    reqType,
		Error:   msg,
	})
}
