// Copyright (C) 2026 Matti Lage. All Rights Reserved.

package netchan

import "expvar"

// chanMetrics record channel activity counters.
type chanMetrics struct {
	connsAccepted expvar.Int // connections accepted by servers
	connsActive   expvar.Int // currently-open connections (gauge)
	framesSent    expvar.Int // frames written to the wire
	framesRecv    expvar.Int // frames read and decoded
	sendErrors    expvar.Int // sends that failed (encode or write)
	recvErrors    expvar.Int // receive failures (transport or decode)
	idsReused     expvar.Int // client IDs issued from the free list

	emap *expvar.Map
}

var metrics = newChanMetrics()

func newChanMetrics() *chanMetrics {
	cm := &chanMetrics{emap: new(expvar.Map)}
	cm.emap.Set("conns_accepted", &cm.connsAccepted)
	cm.emap.Set("conns_active", &cm.connsActive)
	cm.emap.Set("frames_sent", &cm.framesSent)
	cm.emap.Set("frames_received", &cm.framesRecv)
	cm.emap.Set("send_errors", &cm.sendErrors)
	cm.emap.Set("recv_errors", &cm.recvErrors)
	cm.emap.Set("ids_reused", &cm.idsReused)
	return cm
}

// Metrics returns the metrics map shared by all channels in the process. It is
// safe for the caller to add additional metrics to the map.
func Metrics() *expvar.Map { return metrics.emap }
