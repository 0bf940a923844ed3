// Package apiconnect wires the splitledger messages to Connect handlers and
// clients. Every service speaks JSON through Codec.
package apiconnect

import (
	"encoding/json"
	"strings"

	"connectrpc.com/connect"
)

// Codec marshals plain Go messages as JSON. It registers under the name
// "json", so requests use the application/json content type.
type Codec struct{}

func (Codec) Name() string { return "json" }

func (Codec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (Codec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

func handlerOptions(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{connect.WithCodec(Codec{})}, opts...)
}

func clientOptions(opts []connect.ClientOption) []connect.ClientOption {
	return append([]connect.ClientOption{connect.WithCodec(Codec{})}, opts...)
}

func trimBase(baseURL string) string {
	return strings.TrimRight(baseURL, "/")
}
