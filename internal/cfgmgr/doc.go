// Package cfgmgr holds the running gateway configuration.
//
// A Manager is created with the device defaults and started with Init. Readers
// bracket access with LockRO and its release function, or use View. Writers
// call Update; the registered change callback runs after the lock is
// released and is where persistence and LAN auth propagation happen. The
// manager itself never touches storage.
//
// Each update records the replaced configuration in a bounded History so the
// last change can be rolled back.
package cfgmgr
