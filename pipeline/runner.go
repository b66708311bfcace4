// SPDX-License-Identifier: MIT

package pipeline

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/katalvlaran/alterdet/changemask"
	"github.com/katalvlaran/alterdet/composite"
	"github.com/katalvlaran/alterdet/iw"
	"github.com/katalvlaran/alterdet/lda"
	"github.com/katalvlaran/alterdet/mad"
	"github.com/katalvlaran/alterdet/raster"
	"github.com/katalvlaran/alterdet/vectorize"
)

// CompositeProvider supplies the masked composite of a date window over an
// area of interest. *composite.Compositor implements it.
type CompositeProvider interface {
	Composite(ctx context.Context, window composite.DateRange, aoi raster.Region) (*raster.Raster, error)
}

// Request is one change-detection job.
type Request struct {
	ID   string
	AOI  raster.Region
	Date time.Time // date of interest; see composite.ChangeWindows

	// Habitat selects a built-in lda table; Coefficients overrides it.
	Habitat      string
	Coefficients *lda.Coefficients

	// MinAcres drops change polygons smaller than this.
	MinAcres float64
}

// Inputs are the composites a report was computed from.
type Inputs struct {
	Before, After             *raster.Raster
	BeforeWindow, AfterWindow composite.DateRange
}

// IWReport is the outcome of DetectIW.
type IWReport struct {
	Request      string
	Inputs       Inputs
	Coefficients *lda.Coefficients
	Detection    *iw.Detection
	Features     []vectorize.Feature
}

// IRMADReport is the outcome of DetectIRMAD.
type IRMADReport struct {
	Request       string
	Inputs        Inputs
	Result        *mad.Result
	Calibration   *mad.Calibration // robust chi-square and p of the final pass
	Normalization *mad.Normalization
	Mask          *changemask.Mask // calibrated p ≤ ChangeAlpha, opened
	Features      []vectorize.Feature
}

// Runner executes requests against one CompositeProvider.
type Runner struct {
	provider CompositeProvider
	opts     Options
}

// NewRunner binds a provider. Errors: ErrNilProvider.
func NewRunner(p CompositeProvider, opts ...Option) (*Runner, error) {
	if p == nil {
		return nil, ErrNilProvider
	}
	o := DefaultOptions()
	for _, fn := range opts {
		if fn != nil {
			fn(&o)
		}
	}

	return &Runner{provider: p, opts: o}, nil
}

func (r *Runner) logger(req Request, method Method) logrus.FieldLogger {
	return r.opts.Logger.WithFields(logrus.Fields{"request": req.ID, "method": method.String()})
}

func (r *Runner) inputs(ctx context.Context, req Request, log logrus.FieldLogger) (Inputs, error) {
	if err := ctx.Err(); err != nil {
		return Inputs{}, stageErr(req.ID, StageComposite, err)
	}
	var in Inputs
	in.BeforeWindow, in.AfterWindow = composite.ChangeWindows(req.Date)

	var err error
	if in.Before, err = r.provider.Composite(ctx, in.BeforeWindow, req.AOI); err != nil {
		return Inputs{}, stageErr(req.ID, StageComposite, fmt.Errorf("before %s: %w", in.BeforeWindow, err))
	}
	if in.After, err = r.provider.Composite(ctx, in.AfterWindow, req.AOI); err != nil {
		return Inputs{}, stageErr(req.ID, StageComposite, fmt.Errorf("after %s: %w", in.AfterWindow, err))
	}
	log.WithFields(logrus.Fields{
		"stage":  StageComposite,
		"before": in.BeforeWindow.String(),
		"after":  in.AfterWindow.String(),
	}).Info("pipeline: composites ready")

	return in, nil
}

func (r *Runner) polygons(req Request, m *changemask.Mask) ([]vectorize.Feature, error) {
	fs, err := vectorize.Polygons(m,
		vectorize.WithConnectivity(r.opts.Connectivity),
		vectorize.WithTransform(r.opts.Transform),
		vectorize.WithMinArea(vectorize.AcresToSquareMeters(req.MinAcres)))
	if err != nil {
		return nil, stageErr(req.ID, StageVectorize, err)
	}

	return fs, nil
}

func checkRequest(req Request) error {
	if !(req.MinAcres >= 0) || math.IsInf(req.MinAcres, 1) {
		return stageErr(req.ID, StageConfig, fmt.Errorf("%w: MinAcres %g", ErrInvalidRequest, req.MinAcres))
	}

	return nil
}

// DetectIW runs iteratively weighted change-vector analysis for req and
// vectorizes the cleaned change mask.
// Errors: *StageError wrapping the failure.
func (r *Runner) DetectIW(ctx context.Context, req Request) (*IWReport, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	coef := req.Coefficients
	if coef == nil {
		if req.Habitat == "" {
			return nil, stageErr(req.ID, StageConfig, fmt.Errorf("%w: no habitat or coefficients", ErrInvalidRequest))
		}
		var err error
		if coef, err = lda.Habitat(req.Habitat); err != nil {
			return nil, stageErr(req.ID, StageConfig, err)
		}
	}
	log := r.logger(req, MethodIW)
	in, err := r.inputs(ctx, req, log)
	if err != nil {
		return nil, err
	}

	det, err := iw.Detect(in.Before, in.After, r.opts.Bands, coef, r.opts.Iterations,
		iw.WithRegion(req.AOI),
		iw.WithInitialRegion(req.AOI.WithStride(r.opts.InitialStride)),
		iw.WithWorkers(r.opts.Workers),
		iw.WithLogger(log))
	if err != nil {
		return nil, stageErr(req.ID, StageIW, err)
	}
	fs, err := r.polygons(req, det.Mask)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"stage":    StageVectorize,
		"table":    coef.Name(),
		"changed":  det.Mask.Count(),
		"polygons": len(fs),
	}).Info("pipeline: iw done")

	return &IWReport{Request: req.ID, Inputs: in, Coefficients: coef, Detection: det, Features: fs}, nil
}

// DetectIRMAD runs IR-MAD for req, normalizes the after composite on the
// no-change pixels and vectorizes the pixels whose recalibrated p is at
// most ChangeAlpha.
// Non-convergence is reported through Result.Converged.
// Errors: *StageError wrapping the failure.
func (r *Runner) DetectIRMAD(ctx context.Context, req Request) (*IRMADReport, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	log := r.logger(req, MethodIRMAD)
	in, err := r.inputs(ctx, req, log)
	if err != nil {
		return nil, err
	}

	spectral := r.opts.Bands.Spectral()
	before, err := in.Before.Select(spectral...)
	if err != nil {
		return nil, stageErr(req.ID, StageIRMAD, err)
	}
	after, err := in.After.Select(spectral...)
	if err != nil {
		return nil, stageErr(req.ID, StageIRMAD, err)
	}
	madOpts := []mad.Option{mad.WithRegion(req.AOI), mad.WithWorkers(r.opts.Workers), mad.WithLogger(log)}
	res, err := mad.Run(before, after, r.opts.MaxIterations, madOpts...)
	if err != nil {
		return nil, stageErr(req.ID, StageIRMAD, err)
	}

	pass := res.State.Pass
	cal, err := mad.Recalibrate(pass, madOpts...)
	if err != nil {
		return nil, stageErr(req.ID, StageIRMAD, err)
	}
	p := cal.P
	norm, err := mad.Normalize(before, after, p, r.opts.NoChangeThreshold, madOpts...)
	if err != nil {
		return nil, stageErr(req.ID, StageNormalize, err)
	}

	valid := pass.Variates.Mask()
	set := make([]bool, len(p))
	for i, v := range p {
		set[i] = valid[i] && v <= r.opts.ChangeAlpha
	}
	raw, err := changemask.New(pass.Variates.Width(), pass.Variates.Height(), set, valid)
	if err != nil {
		return nil, stageErr(req.ID, StageIRMAD, err)
	}
	mask := raw.Open()
	fs, err := r.polygons(req, mask)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"stage":     StageVectorize,
		"converged": res.Converged,
		"changed":   mask.Count(),
		"polygons":  len(fs),
	}).Info("pipeline: irmad done")

	return &IRMADReport{
		Request:       req.ID,
		Inputs:        in,
		Result:        res,
		Calibration:   cal,
		Normalization: norm,
		Mask:          mask,
		Features:      fs,
	}, nil
}
