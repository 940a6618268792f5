package mcp

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/blackwell-systems/focuscoach/internal/config"
	"github.com/blackwell-systems/focuscoach/internal/service"
	"github.com/blackwell-systems/focuscoach/internal/store"
)

// newEmptyServer creates a Server over an empty in-memory store.
func newEmptyServer(t *testing.T) *Server {
	t.Helper()
	s, _ := newStoreServer(t)
	return s
}

// newStoreServer creates a Server for user "u1" and returns its store so
// tests can seed sessions.
func newStoreServer(t *testing.T) (*Server, *store.DB) {
	t.Helper()
	db, err := store.OpenInMemory()
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	cfg := &config.Config{Suggest: config.DefaultSuggest, Defaults: config.DefaultPreferences}
	return NewServer(service.New(db, cfg), db, "u1", nil), db
}

// runServer starts s.Run in a goroutine piped through pw/pr and returns
// a function that writes a request line and reads the response line.
// Close pw to trigger EOF. The returned cleanup func cancels the context.
func runServer(t *testing.T, s *Server) (
	sendLine func(line string) string,
	closePipe func(),
	cleanup func(),
) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())

	// Pipe: test writes to pw, server reads from pr.
	pr, pw := io.Pipe()
	// Pipe: server writes to sw, test reads from sr.
	sr, sw := io.Pipe()

	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx, pr, sw)
	}()

	sendLine = func(line string) string {
		_, err := io.WriteString(pw, line+"\n")
		if err != nil {
			t.Fatalf("sendLine write: %v", err)
		}

		// Read one response line.
		buf := make([]byte, 1<<16)
		var out strings.Builder
		for {
			n, err := sr.Read(buf)
			if n > 0 {
				out.Write(buf[:n])
				s := out.String()
				if idx := strings.IndexByte(s, '\n'); idx >= 0 {
					return s[:idx]
				}
			}
			if err != nil {
				t.Fatalf("sendLine read: %v", err)
			}
		}
	}

	closePipe = func() {
		_ = pw.Close()
	}

	cleanup = func() {
		cancel()
		_ = pw.Close()
		// Drain done channel.
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("Run did not return after cancel+close")
		}
	}

	return sendLine, closePipe, cleanup
}

// TestRun_Initialize verifies the server responds to "initialize" with the
// correct protocolVersion and serverInfo.name.
func TestRun_Initialize(t *testing.T) {
	s := newEmptyServer(t)
	sendLine, _, cleanup := runServer(t, s)
	defer cleanup()

	req := `{"jsonrpc":"2.0","id":1,"method":"initialize"}`
	resp := sendLine(req)

	var parsed struct {
		Result struct {
			ProtocolVersion string `json:"protocolVersion"`
			ServerInfo      struct {
				Name string `json:"name"`
			} `json:"serverInfo"`
		} `json:"result"`
	}
	if err := json.Unmarshal([]byte(resp), &parsed); err != nil {
		t.Fatalf("unmarshal response: %v\nresponse: %s", err, resp)
	}
	if parsed.Result.ProtocolVersion == "" {
		t.Errorf("expected non-empty protocolVersion, got empty string; response: %s", resp)
	}
	if parsed.Result.ServerInfo.Name != "focuscoach" {
		t.Errorf("expected serverInfo.name == 'focuscoach', got %q; response: %s",
			parsed.Result.ServerInfo.Name, resp)
	}
}

// TestRun_ToolsList verifies the server responds to "tools/list" with the
// built-in tools plus any registered extras.
func TestRun_ToolsList(t *testing.T) {
	s := newEmptyServer(t)
	// Register a test tool directly so we can assert a non-empty list.
	s.registerTool(toolDef{
		Name:        "test_tool",
		Description: "A test tool",
		InputSchema: json.RawMessage(`{"type":"object","properties":{}}`),
		Handler: func(_ context.Context, args json.RawMessage) (any, error) {
			return map[string]string{"ok": "true"}, nil
		},
	})

	sendLine, _, cleanup := runServer(t, s)
	defer cleanup()

	req := `{"jsonrpc":"2.0","id":2,"method":"tools/list"}`
	resp := sendLine(req)

	var parsed struct {
		Result struct {
			Tools []struct {
				Name string `json:"name"`
			} `json:"tools"`
		} `json:"result"`
	}
	if err := json.Unmarshal([]byte(resp), &parsed); err != nil {
		t.Fatalf("unmarshal response: %v\nresponse: %s", err, resp)
	}
	if len(parsed.Result.Tools) != 5 {
		t.Errorf("expected 5 tools in list, got %d; response: %s",
			len(parsed.Result.Tools), resp)
	}
	for _, tool := range parsed.Result.Tools {
		if tool.Name == "" {
			t.Errorf("tool has empty name; response: %s", resp)
		}
	}
}

// TestRun_UnknownMethod verifies that an unknown method returns JSON-RPC
// error code -32601.
func TestRun_UnknownMethod(t *testing.T) {
	s := newEmptyServer(t)
	sendLine, _, cleanup := runServer(t, s)
	defer cleanup()

	req := `{"jsonrpc":"2.0","id":3,"method":"nonexistent/method"}`
	resp := sendLine(req)

	var parsed struct {
		Error *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal([]byte(resp), &parsed); err != nil {
		t.Fatalf("unmarshal response: %v\nresponse: %s", err, resp)
	}
	if parsed.Error == nil {
		t.Fatalf("expected error in response, got none; response: %s", resp)
	}
	if parsed.Error.Code != -32601 {
		t.Errorf("expected error code -32601, got %d; response: %s", parsed.Error.Code, resp)
	}
}

// TestRun_Notification verifies that a message without an "id" field
// (a JSON-RPC notification) produces no response.
func TestRun_Notification(t *testing.T) {
	s := newEmptyServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pr, pw := io.Pipe()
	sr, sw := io.Pipe()

	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx, pr, sw)
	}()

	// Send a notification (no "id" field).
	notification := `{"jsonrpc":"2.0","method":"notifications/initialized"}` + "\n"
	if _, err := io.WriteString(pw, notification); err != nil {
		t.Fatalf("write notification: %v", err)
	}

	// After writing the notification, attempt to read a response with a short
	// deadline. We expect nothing to be written.
	readDone := make(chan []byte, 1)
	go func() {
		buf := make([]byte, 1024)
		n, _ := sr.Read(buf)
		readDone <- buf[:n]
	}()

	select {
	case data := <-readDone:
		t.Errorf("expected no response for notification, but got: %s", data)
	case <-time.After(100 * time.Millisecond):
		// Correct: no response was written within the deadline.
	}

	// Clean up.
	cancel()
	_ = pw.Close()
	_ = sr.Close()
}

// TestRun_ContextCancel verifies that cancelling the context causes Run to
// return nil.
func TestRun_ContextCancel(t *testing.T) {
	s := newEmptyServer(t)
	ctx, cancel := context.WithCancel(context.Background())

	pr, pw := io.Pipe()
	_, sw := io.Pipe()

	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx, pr, sw)
	}()

	// Cancel the context and expect Run to return nil.
	cancel()
	_ = pw.Close()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected Run to return nil on context cancel, got: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("Run did not return after context cancel")
	}
}

// TestRun_EOFClean verifies that closing the writer side of the input pipe
// causes Run to return nil (clean EOF).
func TestRun_EOFClean(t *testing.T) {
	s := newEmptyServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pr, pw := io.Pipe()
	_, sw := io.Pipe()

	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx, pr, sw)
	}()

	// Close the write side to signal EOF.
	_ = pw.Close()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected Run to return nil on EOF, got: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("Run did not return after EOF")
	}
}

// TestRun_Ping verifies that ping answers with an empty result.
func TestRun_Ping(t *testing.T) {
	s := newEmptyServer(t)
	sendLine, _, cleanup := runServer(t, s)
	defer cleanup()

	resp := sendLine(`{"jsonrpc":"2.0","id":9,"method":"ping"}`)
	if !strings.Contains(resp, `"result":{}`) {
		t.Errorf("expected empty result, got %s", resp)
	}
	if strings.Contains(resp, `"error"`) {
		t.Errorf("unexpected error in ping response: %s", resp)
	}
}

// TestRun_ToolsCallInvalidParams verifies -32602 for a call without a name.
func TestRun_ToolsCallInvalidParams(t *testing.T) {
	s := newEmptyServer(t)
	sendLine, _, cleanup := runServer(t, s)
	defer cleanup()

	for _, req := range []string{
		`{"jsonrpc":"2.0","id":10,"method":"tools/call","params":{"arguments":{}}}`,
		`{"jsonrpc":"2.0","id":11,"method":"tools/call","params":"oops"}`,
	} {
		resp := sendLine(req)
		if !strings.Contains(resp, `"code":-32602`) {
			t.Errorf("expected -32602 for %s, got %s", req, resp)
		}
	}
}

// TestRun_UnknownTool verifies that an unknown tool is a tool-level error.
func TestRun_UnknownTool(t *testing.T) {
	s := newEmptyServer(t)
	sendLine, _, cleanup := runServer(t, s)
	defer cleanup()

	resp := sendLine(`{"jsonrpc":"2.0","id":12,"method":"tools/call","params":{"name":"get_weather"}}`)

	var parsed struct {
		Result toolsCallResult `json:"result"`
	}
	if err := json.Unmarshal([]byte(resp), &parsed); err != nil {
		t.Fatalf("unmarshal response: %v\nresponse: %s", err, resp)
	}
	if !parsed.Result.IsError {
		t.Errorf("expected isError, got %s", resp)
	}
	if len(parsed.Result.Content) != 1 || parsed.Result.Content[0].Text != "unknown tool: get_weather" {
		t.Errorf("unexpected content: %+v", parsed.Result.Content)
	}
}
