package speech

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"glas/internal/audio"
	"glas/internal/resilience"
)

// fakeService - минимальный сервис распознавания для тестов.
type fakeService struct {
	t      *testing.T
	script func(ctx context.Context, conn *websocket.Conn)

	mu     sync.Mutex
	auth   string
	lang   string
	start  startMessage
	frames [][]byte
}

func (s *fakeService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.auth = r.Header.Get("Authorization")
	s.lang = r.URL.Query().Get("lang")
	s.mu.Unlock()

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.t.Errorf("accept: %v", err)
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()
	if s.script != nil {
		s.script(ctx, conn)
	}
}

func (s *fakeService) readStart(ctx context.Context, conn *websocket.Conn) bool {
	var start startMessage
	if err := wsjson.Read(ctx, conn, &start); err != nil {
		return false
	}
	s.mu.Lock()
	s.start = start
	s.mu.Unlock()
	return true
}

// readFrames читает бинарные кадры до сообщения finish.
func (s *fakeService) readFrames(ctx context.Context, conn *websocket.Conn) bool {
	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			return false
		}
		if typ == websocket.MessageBinary {
			s.mu.Lock()
			s.frames = append(s.frames, data)
			s.mu.Unlock()
			continue
		}
		var msg controlMessage
		if json.Unmarshal(data, &msg) == nil && msg.Type == "finish" {
			return true
		}
	}
}

func send(ctx context.Context, conn *websocket.Conn, typ, text string) {
	_ = wsjson.Write(ctx, conn, serverMessage{Type: typ, Text: text, Message: text})
}

func collect(t *testing.T, ch <-chan Response) []Response {
	t.Helper()
	var out []Response
	timeout := time.After(3 * time.Second)
	for {
		select {
		case r, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, r)
		case <-timeout:
			t.Fatal("response channel was not closed")
		}
	}
}

func testRetry() resilience.RetryConfig {
	return resilience.RetryConfig{MaxRetries: 1, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}
}

func TestStartRealtimeStreamsFramesAndResponses(t *testing.T) {
	svc := &fakeService{t: t}
	svc.script = func(ctx context.Context, conn *websocket.Conn) {
		if !svc.readStart(ctx, conn) {
			return
		}
		send(ctx, conn, "interim", "你")
		send(ctx, conn, "interim", "你好")
		if !svc.readFrames(ctx, conn) {
			return
		}
		send(ctx, conn, "final", "你好吗")
		send(ctx, conn, "finished", "")
	}
	srv := httptest.NewServer(svc)
	defer srv.Close()

	c := NewClient(Config{URL: srv.URL, Token: "secret", Language: "zh-CN", VAD: true, Retry: testRetry()})

	frames := make(chan audio.Frame, 3)
	frames <- audio.Frame{1}
	frames <- audio.Frame{2}
	frames <- audio.Frame{3}
	close(frames)

	responses, err := c.StartRealtime(context.Background(), frames)
	if err != nil {
		t.Fatalf("StartRealtime() error = %v", err)
	}

	got := collect(t, responses)
	want := []Response{Interim("你"), Interim("你好"), Final("你好吗"), Finished()}
	if len(got) != len(want) {
		t.Fatalf("got %d responses %+v, want %d", len(got), got, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("response[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()
	if svc.auth != "Bearer secret" {
		t.Errorf("Authorization = %q", svc.auth)
	}
	if svc.lang != "zh-CN" {
		t.Errorf("lang = %q", svc.lang)
	}
	if svc.start.Type != "start" || svc.start.SampleRate != 16000 || svc.start.FrameMs != 20 || !svc.start.VAD {
		t.Errorf("start message = %+v", svc.start)
	}
	if len(svc.frames) != 3 {
		t.Fatalf("service got %d frames, want 3", len(svc.frames))
	}
	for i, f := range svc.frames {
		if len(f) != 1 || int(f[0]) != i+1 {
			t.Errorf("frame[%d] = %v, order broken", i, f)
		}
	}
}

func TestStartRealtimeServiceError(t *testing.T) {
	svc := &fakeService{t: t}
	svc.script = func(ctx context.Context, conn *websocket.Conn) {
		if !svc.readStart(ctx, conn) {
			return
		}
		send(ctx, conn, "bogus", "")
		send(ctx, conn, "error", "quota exceeded")
	}
	srv := httptest.NewServer(svc)
	defer srv.Close()

	c := NewClient(Config{URL: srv.URL, Retry: testRetry()})
	frames := make(chan audio.Frame)
	defer close(frames)

	responses, err := c.StartRealtime(context.Background(), frames)
	if err != nil {
		t.Fatalf("StartRealtime() error = %v", err)
	}

	got := collect(t, responses)
	if len(got) != 1 || got[0].Kind != KindError || got[0].Message != "quota exceeded" {
		t.Fatalf("responses = %+v, want one error", got)
	}
}

func TestStartRealtimeDisconnect(t *testing.T) {
	svc := &fakeService{t: t}
	svc.script = func(ctx context.Context, conn *websocket.Conn) {
		svc.readStart(ctx, conn)
		conn.Close(websocket.StatusGoingAway, "restart")
	}
	srv := httptest.NewServer(svc)
	defer srv.Close()

	c := NewClient(Config{URL: srv.URL, Retry: testRetry()})
	frames := make(chan audio.Frame)
	defer close(frames)

	responses, err := c.StartRealtime(context.Background(), frames)
	if err != nil {
		t.Fatalf("StartRealtime() error = %v", err)
	}
	got := collect(t, responses)
	if len(got) != 1 || got[0].Kind != KindError {
		t.Fatalf("responses = %+v, want one error", got)
	}
}

func TestStartRealtimeCancel(t *testing.T) {
	svc := &fakeService{t: t}
	svc.script = func(ctx context.Context, conn *websocket.Conn) {
		svc.readStart(ctx, conn)
		svc.readFrames(ctx, conn)
	}
	srv := httptest.NewServer(svc)
	defer srv.Close()

	c := NewClient(Config{URL: srv.URL, Retry: testRetry()})
	frames := make(chan audio.Frame)
	defer close(frames)

	ctx, cancel := context.WithCancel(context.Background())
	responses, err := c.StartRealtime(ctx, frames)
	if err != nil {
		t.Fatalf("StartRealtime() error = %v", err)
	}
	cancel()

	if got := collect(t, responses); len(got) != 0 {
		t.Errorf("responses after cancel = %+v, want none", got)
	}
}

func TestDialUnauthorizedIsPermanent(t *testing.T) {
	var hits int
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits++
		mu.Unlock()
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(Config{URL: srv.URL, Retry: resilience.RetryConfig{MaxRetries: 3, BaseDelay: time.Millisecond}})
	err := c.Check(context.Background())
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("Check() error = %v, want ErrUnauthorized", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if hits != 1 {
		t.Errorf("dial attempts = %d, want 1", hits)
	}
}

func TestCheck(t *testing.T) {
	svc := &fakeService{t: t}
	svc.script = func(ctx context.Context, conn *websocket.Conn) {
		_, _, _ = conn.Read(ctx)
	}
	srv := httptest.NewServer(svc)
	defer srv.Close()

	c := NewClient(Config{URL: srv.URL, Retry: testRetry()})
	if err := c.Check(context.Background()); err != nil {
		t.Fatalf("Check() error = %v", err)
	}
}

func TestNotConfigured(t *testing.T) {
	c := NewClient(Config{})
	if _, err := c.StartRealtime(context.Background(), nil); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("StartRealtime() error = %v, want ErrNotConfigured", err)
	}
}

func TestKindString(t *testing.T) {
	tests := map[Kind]string{
		KindInterim:  "interim",
		KindFinal:    "final",
		KindFinished: "finished",
		KindError:    "error",
		Kind(42):     "unknown",
	}
	for k, want := range tests {
		if got := k.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", int(k), got, want)
		}
	}
}
