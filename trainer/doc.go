// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package trainer provides the hybrid REINFORCE and backprop training loop for
// stochastic attention models.
//
// # Overview
//
// A model plugs in as an Oracle: for each example it reports a cost, the
// sampled attention positions, its decision, the supervised gradients and the
// gradient of the position log-likelihood with respect to the policy weight.
// The trainer turns the decision into a reward, weights the policy gradient
// against a running reward baseline, accumulates both kinds of gradient over
// a mini-batch and applies them with the configured update rule. After every
// batch it drives an attention.Controller with the batch's mean reward.
//
// # Basic Usage
//
//	t, err := trainer.New(model, trainer.Params{
//	    Supervised: model.Parameters(),
//	    Policy:     model.PolicyWeight(),
//	}, ctrl, trainer.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//
//	for range epochs {
//	    res, err := t.TrainEpoch(data)
//	    if errors.Is(err, trainer.ErrCostOverflow) {
//	        continue
//	    }
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(res)
//	}
//
// # Progress
//
// By default the trainer writes one-character progress markers to stdout.
// Use SetMonitor with NewLogMonitor, a MonitorFunc or Discard to change that.
package trainer
