// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides the parameter update rules used by the trainer.
//
// # Overview
//
// This package contains:
//   - Adagrad: accumulated squared gradient with optional gsum
//     regularization (FINETUNING_ADAGRAD) and per-tensor max-norm clamp
//   - SGD: Stochastic Gradient Descent with momentum
//   - Adam: Adaptive Moment Estimation with bias correction
//   - New: factory selecting a rule by Method name
//
// # Basic Usage
//
//	opt, err := optim.New(optim.FinetuningAdagrad, params, optim.Config{
//	    LR:                 0.01,
//	    GsumRegularization: 1e-4,
//	})
//	if err != nil {
//	    return err
//	}
//	err = opt.Step(grads) // grads[i] matches params[i]
//
// Gradients are passed in parameter order. A nil gradient leaves its
// parameter untouched.
package optim
