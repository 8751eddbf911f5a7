package tinyServer

import "testing"

func TestHeaderKeepsOrderAndCasing(t *testing.T) {
	var h Header
	h.Add("Server", serverName)
	h.Add("Content-type", "text/html")
	h.Add("X-Extra", "a")
	h.Add("x-extra", "b")

	ExpectEqual(t, "Server", h[0].Key)
	ExpectEqual(t, "Content-type", h[1].Key)
	ExpectEqual(t, "text/html", h.Get("Content-Type"))
	ExpectEqual(t, "text/html", h.Get("content-type"))
	ExpectEqual(t, "", h.Get("Content-Length"))

	values := h.Values("X-Extra")
	if len(values) != 2 || values[0] != "a" || values[1] != "b" {
		t.Errorf("Got %v, want [a b]", values)
	}
}
