package protocol

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRequestRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	enc := NewRequestEncoder(&buf)
	require.NoError(t, enc.Encode(NewSetRequest("k", "v")))
	require.NoError(t, enc.Encode(NewGetRequest("k")))
	require.NoError(t, enc.Encode(NewRemoveRequest("k")))

	dec := NewRequestDecoder(&buf)

	req, err := dec.Decode()
	require.NoError(t, err)
	require.NotNil(t, req.Set)
	require.Nil(t, req.Get)
	require.Nil(t, req.Remove)
	require.Equal(t, "k", req.Set.Key)
	require.Equal(t, "v", req.Set.Value)

	req, err = dec.Decode()
	require.NoError(t, err)
	require.NotNil(t, req.Get)
	require.Equal(t, "k", req.Get.Key)

	req, err = dec.Decode()
	require.NoError(t, err)
	require.NotNil(t, req.Remove)
	require.Equal(t, "k", req.Remove.Key)
}

func TestResponseRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	enc := NewResponseEncoder(&buf)
	require.NoError(t, enc.Encode(Response{Status: "value"}))

	dec := NewResponseDecoder(&buf)
	resp, err := dec.Decode()
	require.NoError(t, err)
	require.Equal(t, "value", resp.Status)
}

func TestSetRequestOmitsOtherFields(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewRequestEncoder(&buf).Encode(NewSetRequest("k", "v")))
	require.NotContains(t, buf.String(), `"get"`)
	require.NotContains(t, buf.String(), `"remove"`)
}
