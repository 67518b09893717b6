// Package ui renders terminal output for the blegw-cfg CLI.
//
// Most commands print once and exit: a Header naming the command, a panel of
// fields and a Result box. Two commands run a Bubble Tea program instead:
//
//   - MonitorModel follows a gateway's websocket feed and redraws the status
//     and configuration panels as messages arrive.
//   - ScanModel shows a progress bar while an mDNS scan runs.
//
// Logging stays silent unless BLEGW_LOG_LEVEL is set, so zap output does not
// interleave with the rendered components.
package ui
