// Package gwclient talks to a gateway's configuration endpoint over HTTP.
//
// The client reads the UI document (GET /ruuvi.json), posts partial
// documents (POST /ruuvi.json), reads runtime status (GET /status) and asks
// the gateway to check an MQTT broker. Requests are retried with exponential
// backoff when the failure is transient; a fetched document is cached for a
// short while.
//
// Updates can be verified by re-reading the document, and a RollbackManager
// restores the previous document when verification fails:
//
//	c := gwclient.NewClient("192.168.1.20", 8080)
//	c.SetAuth("Admin", password)
//
//	rm := gwclient.NewRollbackManager(c)
//	res, rolledBack := rm.SafeUpdate(ctx, gwclient.Document{"use_mqtt": true}, nil)
//	if !res.Success {
//	    fmt.Println(gwclient.ShortMessage(res.Error), rolledBack)
//	}
//
// The UI document never carries secrets, so verification skips keys the
// gateway does not report and a rollback leaves credentials as they are.
package gwclient
