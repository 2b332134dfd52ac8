package live

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
)

// Codec encodes messages on the wire. A session uses one codec for both
// directions, chosen when the connection is upgraded.
type Codec interface {
	// Name is the value of the codec query parameter.
	Name() string

	// FrameType is the WebSocket frame type written.
	FrameType() int

	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// Codecs.
var (
	JSON        Codec = jsonCodec{}
	MessagePack Codec = msgpackCodec{}
)

type jsonCodec struct{}

func (jsonCodec) Name() string                       { return "json" }
func (jsonCodec) FrameType() int                     { return websocket.TextMessage }
func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

type msgpackCodec struct{}

func (msgpackCodec) Name() string                       { return "msgpack" }
func (msgpackCodec) FrameType() int                     { return websocket.BinaryMessage }
func (msgpackCodec) Marshal(v any) ([]byte, error)      { return msgpack.Marshal(v) }
func (msgpackCodec) Unmarshal(data []byte, v any) error { return msgpack.Unmarshal(data, v) }

// CodecFor returns the codec requested with ?codec=msgpack, or JSON.
func CodecFor(r *http.Request) Codec {
	if r.URL.Query().Get("codec") == MessagePack.Name() {
		return MessagePack
	}
	return JSON
}
