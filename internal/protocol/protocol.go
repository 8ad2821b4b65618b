// Package protocol defines the JSON wire messages exchanged between
// internal/client and internal/server: one Request per call, one Response
// per reply, streamed back to back over a single net.Conn with no framing
// beyond what encoding/json's Decoder already provides.
package protocol

import (
	"encoding/json"
	"io"
)

// RequestDecoder reads a stream of Requests from an underlying io.Reader,
// one per Decode call, with no length-prefixing or delimiter beyond what
// encoding/json's streaming decoder already provides. internal/server reads
// requests with this.
type RequestDecoder struct {
	dec *json.Decoder
}

// NewRequestDecoder wraps r for reading Requests.
func NewRequestDecoder(r io.Reader) *RequestDecoder {
	return &RequestDecoder{dec: json.NewDecoder(r)}
}

// Decode reads the next Request, returning io.EOF when the stream is
// exhausted cleanly.
func (d *RequestDecoder) Decode() (Request, error) {
	var req Request
	if err := d.dec.Decode(&req); err != nil {
		return Request{}, err
	}
	return req, nil
}

// ResponseEncoder writes a stream of Responses to an underlying io.Writer.
// internal/server writes responses with this.
type ResponseEncoder struct {
	enc *json.Encoder
}

// NewResponseEncoder wraps w for writing Responses.
func NewResponseEncoder(w io.Writer) *ResponseEncoder {
	return &ResponseEncoder{enc: json.NewEncoder(w)}
}

// Encode writes resp.
func (e *ResponseEncoder) Encode(resp Response) error {
	return e.enc.Encode(resp)
}

// RequestEncoder writes a stream of Requests to an underlying io.Writer.
// internal/client writes requests with this.
type RequestEncoder struct {
	enc *json.Encoder
}

// NewRequestEncoder wraps w for writing Requests.
func NewRequestEncoder(w io.Writer) *RequestEncoder {
	return &RequestEncoder{enc: json.NewEncoder(w)}
}

// Encode writes req.
func (e *RequestEncoder) Encode(req Request) error {
	return e.enc.Encode(req)
}

// ResponseDecoder reads a stream of Responses from an underlying io.Reader.
// internal/client reads responses with this.
type ResponseDecoder struct {
	dec *json.Decoder
}

// NewResponseDecoder wraps r for reading Responses.
func NewResponseDecoder(r io.Reader) *ResponseDecoder {
	return &ResponseDecoder{dec: json.NewDecoder(r)}
}

// Decode reads the next Response.
func (d *ResponseDecoder) Decode() (Response, error) {
	var resp Response
	if err := d.dec.Decode(&resp); err != nil {
		return Response{}, err
	}
	return resp, nil
}

// Request is an externally-tagged union of the three operations the server
// supports. Exactly one field is populated; the others are nil and omitted
// from the encoded JSON.
type Request struct {
	Set    *SetRequest    `json:"set,omitempty"`
	Get    *GetRequest    `json:"get,omitempty"`
	Remove *RemoveRequest `json:"remove,omitempty"`
}

// SetRequest asks the server to store Value under Key.
type SetRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// GetRequest asks the server for the value stored under Key.
type GetRequest struct {
	Key string `json:"key"`
}

// RemoveRequest asks the server to delete Key.
type RemoveRequest struct {
	Key string `json:"key"`
}

// Response carries either the result of a Get (Status holds the value) or
// the outcome of a Set/Remove ("" for success). A Get or Remove of a missing
// key gets the literal status "Key not found"; any other engine failure
// makes the server close the connection without sending a Response. This
// mirrors the wire contract exactly: one string field, no separate success
// flag — the client recognizes "not found" by string comparison, same as
// the server produces it.
type Response struct {
	Status string `json:"status"`
}

// NewSetRequest builds a Request wrapping a SetRequest.
func NewSetRequest(key, value string) Request {
	return Request{Set: &SetRequest{Key: key, Value: value}}
}

// NewGetRequest builds a Request wrapping a GetRequest.
func NewGetRequest(key string) Request {
	return Request{Get: &GetRequest{Key: key}}
}

// NewRemoveRequest builds a Request wrapping a RemoveRequest.
func NewRemoveRequest(key string) Request {
	return Request{Remove: &RemoveRequest{Key: key}}
}
