// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

/*
Package supervisor runs ReportKit's long-lived services in a suture v4 tree.

	reportkit (root)
	├── data-layer   store-gc
	├── live-layer   live-hub, live-refresher
	└── api-layer    http-server

Failed services restart with backoff. Once FailureThreshold failures
accumulate (decaying at FailureDecay per second) the supervisor waits
FailureBackoff before trying again. Supervisor events are logged through
sutureslog.

Usage:

	tree, err := supervisor.NewSupervisorTree(slogLogger, supervisor.DefaultTreeConfig())
	tree.AddDataService(services.NewStoreGCService(reports, 10*time.Minute, 0.5))
	tree.AddLiveService(services.NewLiveHubService(hub))
	tree.AddLiveService(refresher)
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	errCh := tree.ServeBackground(ctx)
*/
package supervisor
