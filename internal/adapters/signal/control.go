package signal

import "github.com/dkeye/Huddle/internal/domain"

func (ctl *SignalWSController) handlePing(cid domain.ConnID) {
	ctl.submit(cid, "ping", func() error {
		ctl.Orch.Ping(cid)
		return nil
	})
}

func (ctl *SignalWSController) handleWhoAmI(cid domain.ConnID) {
	ctl.submit(cid, "whoami", func() error {
		ctl.Orch.WhoAmI(cid)
		return nil
	})
}
