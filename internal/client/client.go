// Package client implements the TCP client cmd/kvs drives: one connection,
// one request per call, one response read back before returning.
package client

import (
	"net"

	"github.com/iamNilotpal/kvs/internal/protocol"
)

// Client holds one open connection to a kvs server and the encoder/decoder
// pair wrapping it.
type Client struct {
	conn    net.Conn
	encoder *protocol.RequestEncoder
	decoder *protocol.ResponseDecoder
}

// Dial connects to addr and returns a ready-to-use Client.
func Dial(addr string) (*Client, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}

	return &Client{
		conn:    conn,
		encoder: protocol.NewRequestEncoder(conn),
		decoder: protocol.NewResponseDecoder(conn),
	}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Set stores value under key. The server answers a successful Set with an
// empty status; on a failed Set it closes the connection without answering,
// which surfaces here as a decode error.
func (c *Client) Set(key, value string) error {
	if err := c.encoder.Encode(protocol.NewSetRequest(key, value)); err != nil {
		return err
	}
	_, err := c.decoder.Decode()
	return err
}

// Get returns the value stored under key, and whether it was found.
func (c *Client) Get(key string) (value string, found bool, err error) {
	if err := c.encoder.Encode(protocol.NewGetRequest(key)); err != nil {
		return "", false, err
	}

	resp, err := c.decoder.Decode()
	if err != nil {
		return "", false, err
	}
	if resp.Status == keyNotFoundStatus {
		return "", false, nil
	}
	return resp.Status, true, nil
}

// Remove deletes key, returning found=false if it had no entry.
func (c *Client) Remove(key string) (found bool, err error) {
	if err := c.encoder.Encode(protocol.NewRemoveRequest(key)); err != nil {
		return false, err
	}

	resp, err := c.decoder.Decode()
	if err != nil {
		return false, err
	}
	if resp.Status == keyNotFoundStatus {
		return false, nil
	}
	return true, nil
}

// keyNotFoundStatus mirrors internal/server's literal status string for a
// missing key.
const keyNotFoundStatus = "Key not found"
