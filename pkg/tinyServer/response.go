package tinyServer

import (
	"bufio"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

const (
	protoVersion = "HTTP/1.0"
	serverName   = "HttpServer 1.0"
)

type Response struct {
	Status int
	Reason string
	Header Header
	Body   []byte
}

func newResponse(status int, reason string, now time.Time) *Response {
	res := &Response{
		Status: status,
		Reason: reason,
	}
	res.Header.Add("Server", serverName)
	res.Header.Add("Date", now.UTC().Format(http.TimeFormat))
	return res
}

func okResponse(contentType string, size int64, now time.Time) *Response {
	res := newResponse(http.StatusOK, http.StatusText(http.StatusOK), now)
	res.Header.Add("Content-type", contentType)
	res.Header.Add("Content-length", strconv.FormatInt(size, 10))
	return res
}

func notFoundResponse(target string, now time.Time) *Response {
	res := newResponse(http.StatusNotFound, "File Not Found", now)
	res.Header.Add("Content-Type", "text/html")
	res.Body = errorPage("File Not Found", "404 File Not Found: "+target)
	return res
}

func notImplementedResponse(method Method, now time.Time) *Response {
	res := newResponse(http.StatusNotImplemented, "Not Implemented", now)
	res.Header.Add("Content-Type", "text/html")
	res.Body = errorPage("Not Implemented", "501 Not Implemented: "+string(method)+" method.")
	return res
}

func errorPage(title, heading string) []byte {
	return []byte("<HTML><HEAD><TITLE>" + title + "</TITLE></HEAD>\r\n" +
		"<BODY><H2>" + heading + "</H2></BODY></HTML>\r\n")
}

// WriteHead writes the status line, the header fields and the blank line,
// then flushes.
func (r *Response) WriteHead(w *bufio.Writer) error {
	fmt.Fprintf(w, "%s %d %s\r\n", protoVersion, r.Status, r.Reason)
	for _, f := range r.Header {
		fmt.Fprintf(w, "%s: %s\r\n", f.Key, f.Value)
	}
	w.WriteString("\r\n")

	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to send response head: %w", err)
	}
	return nil
}

// Write sends the head followed by the in-memory body.
func (r *Response) Write(w *bufio.Writer) error {
	if err := r.WriteHead(w); err != nil {
		return err
	}
	if len(r.Body) == 0 {
		return nil
	}

	w.Write(r.Body)
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to send response body: %w", err)
	}
	return nil
}
