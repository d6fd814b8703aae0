package io

import (
	"errors"

	"github.com/ezrec/synvm/translate"
)

var f = translate.From

var (
	// Console errors
	ErrOutputMissing = errors.New(f("output missing"))
)
