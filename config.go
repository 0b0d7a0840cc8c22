// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package pdfstruct

import (
	"github.com/go-playground/validator/v10"
	"github.com/sassoftware/viya-pdf-struct/logger"
)

type ParsingMode string

const (
	Strict     ParsingMode = "strict"
	BestEffort ParsingMode = "best-effort"
)

// maxHeaderJunk is how far into the file best-effort mode looks for %PDF-.
const maxHeaderJunk = 1024

type Config struct {
	MaxConcurrentPDFs int         `validate:"min=1,max=10"`
	MaxWorkers        int         `validate:"min=1,max=4"`
	ParsingMode       ParsingMode `validate:"oneof=strict best-effort"`
	MaxRetries        int         `validate:"min=0,max=3"`
	MaxFileSize       int64       `validate:"min=0"`
	DebugOn           bool
	Logger            logger.LogFunc
}

func NewDefaultConfig() *Config {
	return &Config{
		MaxConcurrentPDFs: 5,
		MaxWorkers:        4,
		ParsingMode:       BestEffort,
		MaxRetries:        2,
		MaxFileSize:       0,
		DebugOn:           false,
	}
}

func (cfg *Config) Validate() error {
	logger.Debug("Validating Config Object")
	validate := validator.New()
	return validate.Struct(cfg)
}

func (cfg *Config) strict() bool {
	return cfg.ParsingMode == Strict
}
