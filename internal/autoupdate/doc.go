// Package autoupdate decides when the gateway may look for firmware
// updates.
//
// InWindow checks a point in time against the configured weekdays and hour
// range. Scheduler runs that check on a cron schedule and notifies a
// listener whenever the window is open:
//
//	sched, err := autoupdate.NewScheduler("@every 1h", func() (gwcfg.AutoUpdateConfig, error) {
//	    cfg, err := mgr.Get()
//	    if err != nil {
//	        return gwcfg.AutoUpdateConfig{}, err
//	    }
//	    return cfg.AutoUpdate, nil
//	}, onWindowOpen)
//	sched.Start()
//	defer sched.Stop()
package autoupdate
