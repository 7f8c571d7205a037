package sse

// clientBuffer is how many undelivered frames a client may hold before
// further frames are dropped.
const clientBuffer = 256

// Client is one open event stream.
type Client struct {
	id     string
	meta   map[string]string
	frames chan []byte
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithMetadata attaches a key/value pair that is echoed in the connected event.
func WithMetadata(key, value string) ClientOption {
	return func(c *Client) { c.meta[key] = value }
}

// WithSessionID tags the client with the search session it follows.
func WithSessionID(id string) ClientOption {
	return WithMetadata("session_id", id)
}

// NewClient returns a client with an empty frame buffer.
func NewClient(id string, opts ...ClientOption) *Client {
	c := &Client{id: id, meta: map[string]string{}, frames: make(chan []byte, clientBuffer)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) ID() string                  { return c.id }
func (c *Client) Metadata() map[string]string { return c.meta }
func (c *Client) GetMetadata(key string) string {
	return c.meta[key]
}
func (c *Client) SessionID() string { return c.meta["session_id"] }

// Events yields queued frames until the client is closed.
func (c *Client) Events() <-chan []byte { return c.frames }

// Send queues data without blocking. It reports false when the buffer is full.
func (c *Client) Send(data []byte) bool {
	select {
	case c.frames <- data:
		return true
	default:
		return false
	}
}

// Close ends the client's stream. Only the hub calls it.
func (c *Client) Close() { close(c.frames) }
