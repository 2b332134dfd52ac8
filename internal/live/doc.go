// Package live serves interactive component documents over WebSocket.
//
// Each connection gets its own Session: a document parsed from the page and
// upgraded against a shared registry. The client sends events naming a
// target by selector; the session dispatches them into the document and
// answers with the re-rendered body whenever the DOM changed, including
// changes caused later by async computeds.
//
// All document work runs on a single reactive.EventLoop, which should also
// be installed as the reactive scheduler.
//
// Messages are JSON text frames by default, or MessagePack binary frames
// when the client connects with ?codec=msgpack:
//
//	→ {"type":"event","selector":"my-counter .increment","event":"click"}
//	→ {"type":"event","selector":"hello-world input","event":"input","value":"Ada"}
//	→ {"type":"ping"}
//	← {"type":"render","session":"…","html":"…"}
//	← {"type":"error","code":"UIE402","message":"…"}
//	← {"type":"pong"}
package live
