package models

import "errors"

var (
	// ErrInsufficientHistory is reported when fewer than MinHistoryMonths exist.
	// Use cases surface it as a status value; it never reaches transport as a failure.
	ErrInsufficientHistory = errors.New("insufficient history")
	// ErrScalerDimensionMismatch signals an integration bug between window, scalers and model.
	ErrScalerDimensionMismatch = errors.New("scaler dimension mismatch")
	ErrInvalidHorizon          = errors.New("invalid horizon")
	ErrInvalidMonth            = errors.New("invalid month")
	// ErrRegressorUnavailable is returned when model or scaler artifacts cannot be loaded.
	ErrRegressorUnavailable = errors.New("regressor unavailable")
	ErrInvalidRecord        = errors.New("invalid record")
	ErrUserNotFound         = errors.New("user not found")
	ErrUserExists           = errors.New("user already exists")
)

// MinHistoryMonths is the minimum number of months required by projection and risk.
const MinHistoryMonths = 3
