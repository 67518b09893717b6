// Package logging provides structured logging for the gateway daemon and
// its configuration tools.
//
// The package wraps a single zap logger behind package-level functions. Until
// Initialize is called (or BLEGW_LOG_LEVEL is set) the logger is a no-op, so
// CLI commands stay silent by default.
//
// # Log Levels
//
//   - Debug: storage operations, timer restarts, per-request details
//   - Info: mode changes, configuration updates, keys left unchanged
//   - Warn: keys replaced by defaults, unknown enum text
//   - Error: storage and persistence failures
//
// # Config Decoding
//
// The JSON codec reports every absent key with exactly one line carrying a
// "key" field:
//
//	logging.LogKeyDefault("mqtt_port")      // Warn: default used
//	logging.LogKeyUnchanged("mqtt_pass")    // Info: previous value kept
//
// Credentials are never written to the log. Use Secret to log whether a
// credential is set:
//
//	logging.Info("LAN auth applied", logging.Secret("password", pass))
//
// # Tests
//
// Tests can capture output with the zap observer:
//
//	core, logs := observer.New(zapcore.DebugLevel)
//	prev := logging.SetLogger(zap.New(core))
//	defer logging.SetLogger(prev)
package logging
