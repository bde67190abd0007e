package detector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg"
	"net/url"
	"path"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"annotator/internal/models"
)

const (
	remoteReadTimeout  = 10 * time.Second
	remoteWriteTimeout = 5 * time.Second
)

// RemoteClassifier sends images to an inference server over a websocket,
// one request and one reply at a time.
type RemoteClassifier struct {
	serverURL string
	artifact  models.Artifact

	mu   sync.Mutex
	conn *websocket.Conn
}

// DialRemoteClassifier connects to ws://host/<basePath>/<artifact>.
func DialRemoteClassifier(host, basePath string, artifact models.Artifact) (*RemoteClassifier, error) {
	u := url.URL{Scheme: "ws", Host: host, Path: path.Join("/", basePath, string(artifact))}

	c := &RemoteClassifier{
		serverURL: u.String(),
		artifact:  artifact,
	}

	if err := c.connect(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *RemoteClassifier) URL() string {
	return c.serverURL
}

func (c *RemoteClassifier) connect() error {
	dialer := *websocket.DefaultDialer
	dialer.HandshakeTimeout = remoteReadTimeout

	conn, _, err := dialer.Dial(c.serverURL, nil)
	if err != nil {
		return fmt.Errorf("%w: dial %s: %v", ErrBackendUnavailable, c.serverURL, err)
	}

	c.conn = conn
	return nil
}

func (c *RemoteClassifier) Predict(ctx context.Context, img image.Image) (float32, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}); err != nil {
		return 0, fmt.Errorf("jpeg encode: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		if err := c.connect(); err != nil {
			return 0, err
		}
	}

	result, err := c.roundTrip(ctx, buf.Bytes())
	if err != nil {
		c.conn.Close()
		c.conn = nil
		return 0, err
	}

	if result.Label != "" && result.Label != string(c.artifact) {
		return 0, fmt.Errorf("server answered for %q, want %q", result.Label, c.artifact)
	}

	return result.Confidence, nil
}

func (c *RemoteClassifier) roundTrip(ctx context.Context, payload []byte) (*models.RemoteResult, error) {
	writeDeadline := time.Now().Add(remoteWriteTimeout)
	readDeadline := time.Now().Add(remoteReadTimeout)
	if d, ok := ctx.Deadline(); ok {
		if d.Before(writeDeadline) {
			writeDeadline = d
		}
		if d.Before(readDeadline) {
			readDeadline = d
		}
	}

	c.conn.SetWriteDeadline(writeDeadline)
	if err := c.conn.WriteMessage(websocket.BinaryMessage, payload); err != nil {
		return nil, fmt.Errorf("send image: %w", err)
	}

	c.conn.SetReadDeadline(readDeadline)
	_, message, err := c.conn.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("read result: %w", err)
	}

	var result models.RemoteResult
	if err := json.Unmarshal(message, &result); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}

	return &result, nil
}

func (c *RemoteClassifier) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}

	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(remoteWriteTimeout))

	err := c.conn.Close()
	c.conn = nil
	return err
}
