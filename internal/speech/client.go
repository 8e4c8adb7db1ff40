package speech

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog/log"

	"glas/internal/audio"
	"glas/internal/resilience"
)

var (
	// ErrNotConfigured возвращается, если не задан адрес сервиса.
	ErrNotConfigured = errors.New("speech: recognition url is not configured")
	// ErrUnauthorized возвращается при отказе в авторизации.
	ErrUnauthorized = errors.New("speech: unauthorized")
)

const responseQueueSize = 32

// Config содержит настройки подключения к сервису распознавания.
type Config struct {
	URL      string
	Token    string
	Language string
	VAD      bool
	Retry    resilience.RetryConfig
}

// Client подключается к сервису потокового распознавания по WebSocket.
// Кадры уходят бинарными сообщениями, ответы приходят JSON.
type Client struct {
	cfg Config
}

// NewClient создаёт клиента.
func NewClient(cfg Config) *Client {
	return &Client{cfg: cfg}
}

type startMessage struct {
	Type       string `json:"type"`
	Format     string `json:"format"`
	SampleRate int    `json:"sample_rate"`
	Channels   int    `json:"channels"`
	FrameMs    int    `json:"frame_ms"`
	Language   string `json:"language,omitempty"`
	VAD        bool   `json:"vad"`
}

type controlMessage struct {
	Type string `json:"type"`
}

type serverMessage struct {
	Type    string `json:"type"`
	Text    string `json:"text"`
	Message string `json:"message"`
}

// StartRealtime открывает сессию: кадры из frames пересылаются в сервис,
// ответы приходят в возвращаемый канал в порядке получения.
// Канал закрывается после Finished/Error или отмены ctx.
func (c *Client) StartRealtime(ctx context.Context, frames <-chan audio.Frame) (<-chan Response, error) {
	conn, err := c.dial(ctx)
	if err != nil {
		return nil, err
	}

	start := startMessage{
		Type:       "start",
		Format:     "opus",
		SampleRate: audio.TargetSampleRate,
		Channels:   1,
		FrameMs:    audio.FrameDurationMs,
		Language:   c.cfg.Language,
		VAD:        c.cfg.VAD,
	}
	if err := wsjson.Write(ctx, conn, start); err != nil {
		conn.Close(websocket.StatusInternalError, "start failed")
		return nil, fmt.Errorf("send start: %w", err)
	}

	sessCtx, cancel := context.WithCancel(ctx)
	responses := make(chan Response, responseQueueSize)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.writeLoop(sessCtx, conn, frames)
	}()

	go func() {
		defer close(responses)
		c.readLoop(sessCtx, conn, responses)
		cancel()
		wg.Wait()
		conn.Close(websocket.StatusNormalClosure, "")
	}()

	return responses, nil
}

// Check проверяет доступность сервиса и авторизацию.
func (c *Client) Check(ctx context.Context) error {
	conn, err := c.dial(ctx)
	if err != nil {
		return err
	}
	_ = conn.Close(websocket.StatusNormalClosure, "check")
	return nil
}

func (c *Client) endpoint() (string, error) {
	if c.cfg.URL == "" {
		return "", ErrNotConfigured
	}
	u, err := url.Parse(c.cfg.URL)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	if c.cfg.Language != "" {
		q := u.Query()
		q.Set("lang", c.cfg.Language)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	endpoint, err := c.endpoint()
	if err != nil {
		return nil, err
	}

	opts := &websocket.DialOptions{HTTPHeader: http.Header{}}
	if c.cfg.Token != "" {
		opts.HTTPHeader.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	var conn *websocket.Conn
	err = resilience.Retry(ctx, c.cfg.Retry, func() error {
		cn, resp, err := websocket.Dial(ctx, endpoint, opts)
		if err != nil {
			if resp != nil && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
				return resilience.Permanent(fmt.Errorf("%w: %s", ErrUnauthorized, resp.Status))
			}
			return err
		}
		conn = cn
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("websocket dial: %w", err)
	}
	return conn, nil
}

func (c *Client) writeLoop(ctx context.Context, conn *websocket.Conn, frames <-chan audio.Frame) {
	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-frames:
			if !ok {
				if err := wsjson.Write(ctx, conn, controlMessage{Type: "finish"}); err != nil && ctx.Err() == nil {
					log.Debug().Err(err).Msg("Не удалось отправить finish")
				}
				return
			}
			if err := conn.Write(ctx, websocket.MessageBinary, frame); err != nil {
				if ctx.Err() == nil {
					log.Warn().Err(err).Msg("Ошибка отправки кадра")
				}
				return
			}
		}
	}
}

func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn, out chan<- Response) {
	emit := func(r Response) bool {
		select {
		case out <- r:
			return true
		case <-ctx.Done():
			return false
		}
	}

	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				emit(Finished())
				return
			}
			emit(Failed(err.Error()))
			return
		}
		if typ != websocket.MessageText {
			continue
		}

		var msg serverMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Debug().Err(err).Str("data", string(data)).Msg("Некорректное сообщение сервиса")
			continue
		}

		switch msg.Type {
		case "interim":
			if !emit(Interim(msg.Text)) {
				return
			}
		case "final":
			if !emit(Final(msg.Text)) {
				return
			}
		case "finished":
			emit(Finished())
			return
		case "error":
			emit(Failed(msg.Message))
			return
		default:
			log.Debug().Str("type", msg.Type).Msg("Неизвестный тип сообщения")
		}
	}
}
