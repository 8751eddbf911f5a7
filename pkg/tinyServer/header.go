package tinyServer

import "net/textproto"

// Header keeps fields in the order and casing they were added in.
// Keys are only canonicalized for lookups.
type Header []HeaderField

type HeaderField struct {
	Key   string
	Value string
}

func (h *Header) Add(key, value string) {
	*h = append(*h, HeaderField{Key: key, Value: value})
}

func (h Header) Get(key string) string {
	if values := h.Values(key); len(values) > 0 {
		return values[0]
	}
	return ""
}

func (h Header) Values(key string) []string {
	var values []string
	key = textproto.CanonicalMIMEHeaderKey(key)
	for _, f := range h {
		if textproto.CanonicalMIMEHeaderKey(f.Key) == key {
			values = append(values, f.Value)
		}
	}
	return values
}
