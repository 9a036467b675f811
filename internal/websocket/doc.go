// Meridian - SaaS Administration Console KPI Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

/*
Package websocket pushes dashboard updates to connected browsers.

The Hub tracks connected clients and fans messages out to them. Each Client
runs a read pump (client pings, pong deadlines) and a write pump (queued
messages, keepalive pings) on top of a gorilla/websocket connection.

# Message Types

	snapshot_updated   full DashboardSnapshot after every successful refresh
	ping / pong        application-level keepalive initiated by the client

All messages share the envelope:

	{"type": "snapshot_updated", "data": {...}}

# Usage

	hub := websocket.NewHub()
	tree.AddAPIService(services.NewWebSocketHubService(hub))

	// in the HTTP handler
	client := websocket.NewClient(hub, conn)
	client.Enqueue(websocket.Message{Type: websocket.MessageTypeSnapshotUpdated, Data: snap})
	hub.Register <- client
	client.Start()

The refresh manager calls BroadcastJSON after publishing a snapshot. Clients
whose send buffer is full are disconnected rather than blocking the hub; they
reconnect and receive the current snapshot on connect.
*/
package websocket
