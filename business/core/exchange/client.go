package exchange

import (
	"context"
	"fmt"
	"sync"

	"github.com/ardanlabs/sealedledger/foundation/blockchain/signature"
	"github.com/gorilla/websocket"
)

// Client maintains a session with the ledger service over a websocket.
// Every request is signed with the client's keypair.
type Client struct {
	kp   signature.Keypair
	conn *websocket.Conn
	mu   sync.Mutex
}

// Dial opens a session with the ledger service at the websocket url.
func Dial(ctx context.Context, url string, kp signature.Keypair) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}

	c := Client{
		kp:   kp,
		conn: conn,
	}

	return &c, nil
}

// ClientID returns the fingerprint the client signs requests with.
func (c *Client) ClientID() string {
	return c.kp.ClientID()
}

// Do signs and sends a request and waits for the response.
func (c *Client) Do(rt RequestType, var1 string, var2 string) (Response, error) {
	return c.Send(NewRequest(c.kp, rt, var1, var2))
}

// Send sends the request as is and waits for the response.
func (c *Client) Send(req Request) (Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.conn.WriteJSON(req); err != nil {
		return Response{}, fmt.Errorf("send %s: %w", req.RequestType, err)
	}

	var resp Response
	if err := c.conn.ReadJSON(&resp); err != nil {
		return Response{}, fmt.Errorf("receive %s: %w", req.RequestType, err)
	}

	return resp, nil
}

// Close ends the session with a clientExit request so the service can hand
// the connection slot to the next client, then closes the connection.
func (c *Client) Close() (Response, error) {
	resp, err := c.Do(ClientExit, "", "")

	c.mu.Lock()
	defer c.mu.Unlock()

	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	c.conn.WriteMessage(websocket.CloseMessage, msg)

	if cerr := c.conn.Close(); err == nil && cerr != nil {
		err = cerr
	}

	return resp, err
}
