// Package server implements the gateway's local configuration endpoint.
//
// # Routes
//
//	GET  /ruuvi.json        current configuration, secrets hidden
//	POST /ruuvi.json        decode, validate and apply a configuration document
//	GET  /status            connectivity and storage status
//	POST /api/check-mqtt    test the broker settings of a (possibly unsaved) document
//	GET  /ws                websocket feed of status and configuration changes
//
// # LAN Authentication
//
// Every route is guarded by the LAN auth settings of the running
// configuration:
//   - lan_auth_deny: 403 for every request
//   - lan_auth_allow: no credentials required
//   - lan_auth_basic, lan_auth_digest: HTTP basic with the stored user and password
//   - lan_auth_default: HTTP basic with user Admin and the device-derived password
//
// A bearer API key is accepted in place of credentials. The read key allows
// GET requests; the read-write key allows everything.
//
// # Rate Limiting
//
// When a rate is configured, each client address gets its own token bucket.
// Buckets live in a bounded LRU cache so that a scan of many addresses cannot
// grow memory without limit. Rejected requests get 429 with Retry-After.
//
// # Usage Example
//
//	srv, err := server.New(server.Config{Listen: ":8080", RateLimit: 10, RateBurst: 20}, mgr,
//	    server.WithStorageStatus(ns.Status),
//	    server.WithNetworkState(machine.State),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	// Start blocks until ctx is cancelled
//	err = srv.Start(ctx)
//
// # Graceful Shutdown
//
// When the context passed to Start ends, websocket clients receive a close
// frame and in-flight requests get up to ten seconds to finish.
package server
