// Package bootstrap chooses and maintains the gateway's network mode:
// Ethernet, Wi-Fi station or Wi-Fi hotspot.
//
// Decide holds the pure decision rule. Machine applies it at boot and on
// link events posted by the network driver, runs the hotspot idle countdown
// and the bounded wait for an Ethernet link, and counts link losses.
package bootstrap
