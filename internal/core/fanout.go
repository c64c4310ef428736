package core

import (
	"context"

	"github.com/sourcegraph/conc/pool"
)

type outbound struct {
	session *PlayerSession
	frame   Frame
}

// deliver fans a batch out concurrently. Each send gets its own timeout so
// one stuck recipient costs at most SendTimeout and never aborts the rest.
func (r *Room) deliver(batch []outbound) PublishResult {
	res := PublishResult{}
	if len(batch) == 0 {
		return res
	}
	p := pool.NewWithResults[Delivery]().WithMaxGoroutines(r.opts.MaxFanout)
	for _, ob := range batch {
		p.Go(func() Delivery {
			ctx, cancel := context.WithTimeout(context.Background(), r.opts.SendTimeout)
			defer cancel()
			return Delivery{Session: ob.session, Err: ob.session.conn.Send(ctx, ob.frame)}
		})
	}
	for _, d := range p.Wait() {
		if d.Err != nil {
			r.log.Warn().
				Err(d.Err).
				Str("player", string(d.Session.name)).
				Str("sid", string(d.Session.sid)).
				Msg("delivery failed")
			res.Failed = append(res.Failed, d)
			continue
		}
		res.Delivered++
	}
	r.log.Debug().Int("sent_to", res.Delivered).Int("dropped", len(res.Failed)).Msg("broadcast result")
	return res
}
