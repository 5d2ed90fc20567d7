// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides optimizers for an nn.Collection.
package optim

import (
	"github.com/born-ml/graphnet/internal/optim"
	"github.com/born-ml/graphnet/nn"
)

// Optimizer interface defines the common interface for all optimizers.
type Optimizer = optim.Optimizer

// Config represents the base configuration for optimizers.
type Config = optim.Config

// SGD represents the SGD optimizer with optional momentum.
type SGD = optim.SGD

// SGDConfig contains configuration for SGD optimizer.
type SGDConfig = optim.SGDConfig

// NewSGD creates a new SGD optimizer.
//
// Example:
//
//	c := nn.NewCollection(1)
//	model := nn.NewMLP(c, 2, 8, 1)
//	optimizer := optim.NewSGD(c, optim.SGDConfig{LR: 0.1, Momentum: 0.9})
func NewSGD(c *nn.Collection, config SGDConfig) *SGD {
	return optim.NewSGD(c, config)
}

// Adam represents the Adam optimizer.
type Adam = optim.Adam

// AdamConfig contains configuration for Adam optimizer.
type AdamConfig = optim.AdamConfig

// NewAdam creates a new Adam optimizer with bias correction.
func NewAdam(c *nn.Collection, config AdamConfig) *Adam {
	return optim.NewAdam(c, config)
}
