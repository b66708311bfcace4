// SPDX-License-Identifier: MIT

package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Method selects the detector of a batch.
type Method int

const (
	MethodIW    Method = iota // iteratively weighted change vectors
	MethodIRMAD               // iteratively reweighted MAD
)

func (m Method) String() string {
	switch m {
	case MethodIW:
		return "iw"
	case MethodIRMAD:
		return "irmad"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// Outcome is the result of one batch request; exactly one of IW, IRMAD and
// Err is set.
type Outcome struct {
	Request string
	IW      *IWReport
	IRMAD   *IRMADReport
	Err     error
}

// Batch runs every request with method, up to Workers at a time. A failing
// request is logged and recorded in its Outcome; the others still run.
// Outcomes are in request order.
func (r *Runner) Batch(ctx context.Context, reqs []Request, method Method) []Outcome {
	out := make([]Outcome, len(reqs))
	var g errgroup.Group
	g.SetLimit(r.opts.Workers)
	for i, req := range reqs {
		g.Go(func() error {
			out[i] = r.run(ctx, req, method)
			if err := out[i].Err; err != nil {
				fields := logrus.Fields{"request": req.ID, "method": method.String()}
				var se *StageError
				if errors.As(err, &se) {
					fields["stage"] = se.Stage
				}
				r.opts.Logger.WithFields(fields).WithError(err).Error("pipeline: request failed")
			}

			return nil
		})
	}
	_ = g.Wait() // workers return nil; failures live in out[i].Err

	return out
}

func (r *Runner) run(ctx context.Context, req Request, method Method) Outcome {
	o := Outcome{Request: req.ID}
	switch method {
	case MethodIW:
		o.IW, o.Err = r.DetectIW(ctx, req)
	case MethodIRMAD:
		o.IRMAD, o.Err = r.DetectIRMAD(ctx, req)
	default:
		o.Err = stageErr(req.ID, StageConfig, ErrUnknownMethod)
	}

	return o
}
