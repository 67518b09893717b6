// Package mqttcheck verifies that the MQTT broker configured in the gateway
// record accepts a connection with the stored credentials.
//
// The transport selects the URL scheme (tcp, ssl, ws, wss). Failures are
// classified so that the CLI and the local endpoint can report a DNS problem,
// a refused connection, rejected credentials or a timeout.
package mqttcheck
