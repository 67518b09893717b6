// Package config manages the daemon settings file.
//
// The settings describe the process around the gateway: where the bolt
// database lives, the hardware identity the compiled defaults derive from,
// bootstrap timings, the local endpoint and the update check schedule. The
// gateway configuration record itself is not stored here.
//
// # Configuration File Location
//
//   - Linux: $XDG_CONFIG_HOME/blegw/config.yaml or $HOME/.config/blegw/config.yaml
//   - macOS: $HOME/.config/blegw/config.yaml
//   - Windows: %LOCALAPPDATA%\blegw\config.yaml
//
// # Usage Example
//
//	settings, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	params, err := settings.InitParams()
//
// Save performs an atomic write (temporary file plus rename) with 0600
// permissions.
package config
