// Package gateway assembles the running gateway from its parts.
//
// New opens the bolt store named by the settings, applies the installed
// default profile over the compiled defaults, loads the stored record into a
// cfgmgr.Manager and builds the connectivity state machine, the local
// configuration server and the auto-update scheduler around it. Run starts
// them and blocks until the context ends.
//
// Every configuration change goes through the manager. Its change callback
// saves the record (skipping identical documents), asks bootstrap to decide
// again and pushes the new record to websocket clients. A reset removes the
// stored record so the next boot starts from defaults.
package gateway
