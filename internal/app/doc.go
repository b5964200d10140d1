// Package app wires the UGB Geo-Monitor web service together: configuration,
// logging and telemetry, the dataset store, session state, the websocket hub,
// the HTTP router and the server lifecycle.
//
// # Initialization Flow
//
//	1. Load configuration from defaults, config.yaml and UGB_* environment variables
//	2. Resolve and create the data, logs and backup directories
//	3. Initialize OpenTelemetry tracing and Prometheus metrics
//	4. Open the durable dataset store (local CSV or Google Sheets)
//	5. Open the session store (memory or redis) and start the websocket hub
//	6. Build the services, the chi router and the HTTP server
//
// # Usage
//
//	app, err := app.NewApplication()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := app.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// Tests and embedders call New with their own configuration and logger and
// drive the server with Serve on a listener of their choice.
//
// # Graceful Shutdown
//
// Run stops on SIGINT or SIGTERM. Stop drains in-flight requests within the
// configured shutdown timeout, closes websocket clients, closes the redis
// client when one is in use and flushes telemetry.
package app
