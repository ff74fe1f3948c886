// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

/*
Package live pushes report charts to websocket clients.

A Hub routes messages to clients subscribed to one report each. Every client
carries a token bucket (golang.org/x/time/rate) so a burst of refreshes
cannot flood a slow browser; throttled messages are dropped, and a client
whose send buffer fills is disconnected.

The Refresher is the coarse timer behind dashed strokes. On each tick it
re-queries subscribed reports whose range ends now (today, lastHour, 30min),
recomputes the dashed boundary, and broadcasts a chart_updated message
carrying the session's ChartView.

Message types:

	chart_updated     server -> client, data is a session.ChartView
	report_changed    server -> client, data is the updated definition
	stroke_finalized  client -> server, the dashed pattern was drawn
	ping / pong       keepalive

Both Hub and Refresher implement suture.Service and run in the messaging
layer of the supervisor tree.
*/
package live
