// Copyright (C) 2026 Matti Lage. All Rights Reserved.

// Package netchan provides typed channels that communicate over a network
// connection.
//
// A netchan channel pairs a [Sender] with a [Receiver]. The sender encodes
// values and writes them to the connection as length-prefixed frames; the
// receiver reads frames, decodes them, and hands the values to the caller.
// Apart from the error surface, using the pair feels like using an ordinary
// in-process channel.
//
// # Clients
//
// To connect to a server, call [Dial] with the type of the values to send and
// the type of the responses to receive:
//
//	snd, rcv, err := netchan.Dial[Message, Response]("127.0.0.1:9100")
//	if err != nil {
//	   log.Fatalf("Dial: %v", err)
//	}
//	defer snd.Close()
//
// Send enqueues a value and returns immediately with a [Pending] that resolves
// once the value has been written to the connection (or has failed):
//
//	p := snd.Send(Message{Int: 42})
//	if err := p.Wait(); err != nil {
//	   log.Fatalf("Send: %v", err)
//	}
//	rsp, err := rcv.Recv()
//
// # Servers
//
// A [Server] accepts connections, assigns each a numeric client ID, and
// invokes the configured callbacks. The message callback receives each decoded
// value together with the ID of the client that sent it, and its return value
// is written back to that client:
//
//	srv := netchan.NewServer(netchan.ServerConfig[Message, Response]{
//	   OnMessage: func(id uint32, msg Message) Response {
//	      return Response{OK: true}
//	   },
//	})
//	err := srv.ListenAndServe("127.0.0.1:9100")
//
// Client IDs start at 1 and are recycled: when a client disconnects its ID
// returns to a free list and is handed to a later connection, oldest first.
// ListenAndServe runs until the listener is closed (via [Server.Close]) or
// fails.
//
// # Wire format
//
// One frame is a 4-byte little-endian unsigned payload length followed by
// exactly that many bytes of encoded value. There is no magic number, version
// byte, or checksum; both ends must agree on the value types and the codec.
//
// # Encoding
//
// Values are encoded by a [codec.Codec]. The default codec is JSON; any
// implementation that is deterministic and self-delimiting within the frame
// length may be substituted with [WithCodec] (or the Codec field of
// [ServerConfig]).
//
// # Errors
//
// Each direction has a single tagged error type. A [SendError] reports an
// encoding failure, a transport failure, or a send on a closed sender.
// A [ReceiveError] reports a transport failure, a clean end of stream, or a
// payload that did not decode. Every failure is delivered to exactly one
// observer: a send's Pending, or the receive queue. Nothing is retried
// automatically, and there is no automatic reconnection.
//
// # Metrics
//
// The package maintains a collection of expvar counters shared by all
// channels; use [Metrics] to obtain the map. The metrics currently exported
// include:
//
//   - conns_accepted: counter of connections accepted by servers
//   - conns_active: gauge of currently-open connections
//   - frames_sent: counter of frames written
//   - frames_received: counter of frames read and decoded
//   - send_errors: counter of failed sends
//   - recv_errors: counter of receive failures (transport or decode)
//   - ids_reused: counter of client IDs issued from the free list
package netchan
