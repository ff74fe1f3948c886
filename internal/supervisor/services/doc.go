// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

/*
Package services adapts ReportKit components to suture's Serve pattern.

Each wrapper implements suture.Service and fmt.Stringer:

	type Service interface {
	    Serve(ctx context.Context) error
	}

# Available Services

HTTPServerService (api layer):
  - Runs *http.Server, shutting down gracefully on cancel
  - http.ErrServerClosed is treated as a clean exit

LiveHubService (live layer):
  - Runs live.Hub.RunWithContext
  - Logs unexpected exits with the client count lost

StoreGCService (data layer):
  - Compacts the Badger report store's value log on a ticker
  - Returns on GC failure so the supervisor backs off

The live refresher implements suture.Service itself and is added directly.
*/
package services
