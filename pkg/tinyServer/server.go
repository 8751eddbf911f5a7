package tinyServer

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const DefaultFile = "index.html"

const (
	minAcceptDelay = 5 * time.Millisecond
	maxAcceptDelay = time.Second
)

type Config struct {
	// Root is the document root every target is resolved against.
	Root string
	// Verbose enables the per-connection debug lines.
	Verbose bool
	// ReadTimeout bounds the wait for the request line. Zero means no limit.
	ReadTimeout time.Duration
	Logger      zerolog.Logger
	// Now stamps the Date header. Defaults to time.Now.
	Now func() time.Time
}

type HTTPServer struct {
	root        string
	readTimeout time.Duration
	log         zerolog.Logger
	now         func() time.Time
	wg          sync.WaitGroup
}

type ResolvedTarget struct {
	Target      string
	Path        string
	ContentType string
}

func NewHTTPServer(cfg Config) *HTTPServer {
	if cfg.Root == "" {
		cfg.Root = "."
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	level := zerolog.InfoLevel
	if cfg.Verbose {
		level = zerolog.DebugLevel
	}

	return &HTTPServer{
		root:        cfg.Root,
		readTimeout: cfg.ReadTimeout,
		log:         cfg.Logger.Level(level),
		now:         cfg.Now,
	}
}

func (s *HTTPServer) ListenAndServe(ctx context.Context, address string) error {
	l, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", address, err)
	}

	_, port, err := net.SplitHostPort(l.Addr().String())
	if err != nil {
		port = l.Addr().String()
	}
	s.log.Info().Msgf("Listening for connections on port %s...", port)
	return s.Serve(ctx, l)
}

// Serve accepts connections on l until ctx is done, handling each one in its
// own goroutine. It closes l and waits for running handlers before returning.
func (s *HTTPServer) Serve(ctx context.Context, l net.Listener) error {
	stop := context.AfterFunc(ctx, func() { l.Close() })
	defer stop()
	defer s.wg.Wait()

	var tempDelay time.Duration
	for {
		conn, err := l.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return err
			}

			// repeated Accept failures (EMFILE) back off up to maxAcceptDelay
			if tempDelay == 0 {
				tempDelay = minAcceptDelay
			} else {
				tempDelay *= 2
			}
			if tempDelay > maxAcceptDelay {
				tempDelay = maxAcceptDelay
			}
			s.log.Error().Err(err).Dur("retry_in", tempDelay).Msg("accept failed")

			select {
			case <-time.After(tempDelay):
			case <-ctx.Done():
				return nil
			}
			continue
		}
		tempDelay = 0

		s.log.Debug().Str("remote", conn.RemoteAddr().String()).Msg("connection opened")
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.ServeConn(conn)
		}()
	}
}

// ServeConn runs one request/response exchange on conn and closes it.
func (s *HTTPServer) ServeConn(conn net.Conn) {
	ex := &exchange{
		srv:    s,
		conn:   conn,
		reader: bufio.NewReader(conn),
		writer: bufio.NewWriter(conn),
		log:    s.log.With().Str("remote", remoteAddr(conn)).Logger(),
	}

	defer func() {
		if r := recover(); r != nil {
			ex.log.Error().Interface("panic", r).Msg("panic recovered")
			ex.close()
		}
	}()

	for state := awaitRequestLine; state != nil; {
		state = state(ex)
	}
}

func (s *HTTPServer) resolve(target string) ResolvedTarget {
	if strings.HasSuffix(target, "/") {
		target += DefaultFile
	}

	return ResolvedTarget{
		Target:      target,
		Path:        filepath.Join(s.root, filepath.FromSlash(target)),
		ContentType: ContentType(target),
	}
}

func remoteAddr(conn net.Conn) string {
	if addr := conn.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return ""
}

// exchange is the state of a single connection.
type exchange struct {
	srv    *HTTPServer
	conn   net.Conn
	reader *bufio.Reader
	writer *bufio.Writer
	log    zerolog.Logger

	req    *Request
	target ResolvedTarget
	file   *os.File
	size   int64
	closed bool
}

type stateFunc func(*exchange) stateFunc

func awaitRequestLine(ex *exchange) stateFunc {
	if ex.srv.readTimeout > 0 {
		if err := ex.conn.SetReadDeadline(time.Now().Add(ex.srv.readTimeout)); err != nil {
			ex.log.Debug().Err(err).Msg("failed to set read deadline")
		}
	}

	line, err := readRequestLine(ex.reader)
	if err != nil {
		ex.log.Error().Err(err).Msg("server error")
		return closeConn
	}

	req, err := ParseRequestLine(line)
	if err != nil {
		ex.log.Error().Err(err).Msg("server error")
		return closeConn
	}

	ex.req = req
	return dispatchMethod
}

func dispatchMethod(ex *exchange) stateFunc {
	if _, ok := implementedMethods[ex.req.Method]; !ok {
		return rejectMethod
	}
	return resolveTarget
}

func rejectMethod(ex *exchange) stateFunc {
	ex.log.Debug().Msgf("501 Not Implemented: %s method.", ex.req.Method)
	ex.send(notImplementedResponse(ex.req.Method, ex.srv.now()))
	return closeConn
}

func resolveTarget(ex *exchange) stateFunc {
	ex.target = ex.srv.resolve(ex.req.Target)

	file, info, err := openRegular(ex.target.Path)
	if err != nil {
		ex.log.Debug().Err(err).Msgf("404 File Not Found: %s", ex.target.Target)
		return respondNotFound
	}

	ex.file = file
	ex.size = info.Size()
	return respondOK
}

func respondNotFound(ex *exchange) stateFunc {
	ex.send(notFoundResponse(ex.target.Target, ex.srv.now()))
	return closeConn
}

func respondOK(ex *exchange) stateFunc {
	res := okResponse(ex.target.ContentType, ex.size, ex.srv.now())
	if err := res.WriteHead(ex.writer); err != nil {
		ex.log.Error().Err(err).Msg("server error")
		return closeConn
	}

	if ex.req.Method == GET {
		if err := ex.sendFile(); err != nil {
			ex.log.Error().Err(err).Msg("server error")
			return closeConn
		}
	}

	ex.log.Debug().Msgf("File %s of type %s returned.", ex.target.Target, res.Header.Get("Content-type"))
	return closeConn
}

func closeConn(ex *exchange) stateFunc {
	ex.close()
	return nil
}

func (ex *exchange) send(res *Response) {
	if err := res.Write(ex.writer); err != nil {
		ex.log.Error().Err(err).Msg("server error")
	}
}

// sendFile copies exactly the size reported by stat. A file that shrinks in
// between is reported as an error after the head has gone out.
func (ex *exchange) sendFile() error {
	if _, err := io.CopyN(ex.writer, ex.file, ex.size); err != nil {
		return fmt.Errorf("failed to send %s: %w", ex.target.Path, err)
	}
	if err := ex.writer.Flush(); err != nil {
		return fmt.Errorf("failed to send %s: %w", ex.target.Path, err)
	}
	return nil
}

func (ex *exchange) close() {
	if ex.closed {
		return
	}
	ex.closed = true

	if ex.file != nil {
		ex.file.Close()
	}
	if err := ex.conn.Close(); err != nil {
		ex.log.Error().Err(err).Msg("failed to close connection")
		return
	}
	ex.log.Debug().Msg("Connection closed.")
}

func openRegular(path string) (*os.File, os.FileInfo, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, nil, err
	}
	if info.IsDir() {
		file.Close()
		return nil, nil, fmt.Errorf("%s is a directory", path)
	}

	return file, info, nil
}
