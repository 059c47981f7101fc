package model

import "github.com/m-mizutani/goerr/v2"

// Validation errors
var (
	ErrMissingRequired = goerr.New("required field is missing")
)

// Context keys for error values
const (
	RiskIDKey      = "risk_id"
	ControlIDKey   = "control_id"
	FrameworkIDKey = "framework_id"
	AppetiteIDKey  = "appetite_id"
	BandLabelKey   = "band_label"
)
