// Package config provides configuration management for the boatrace EV engine.
package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/wanwanbooboo/boatrace/internal/models"
)

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() *CustomValidator {
	v := validator.New()

	// Register custom validation functions
	_ = v.RegisterValidation("environment", validateEnvironment)
	_ = v.RegisterValidation("loglevel", validateLogLevel)
	_ = v.RegisterValidation("ordermode", validateOrderMode)

	return &CustomValidator{validator: v}
}

// Validate validates the entire configuration. Any violation is fatal to
// process initialization, never a per-request condition.
func Validate(cfg *Config) error {
	cv := NewValidator()
	return cv.Validate(cfg)
}

// Validate validates the configuration using registered validation rules
func (cv *CustomValidator) Validate(cfg *Config) error {
	err := cv.validator.Struct(cfg)
	if err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("%w: %v", models.ErrConfigInvalid, err)
	}

	// Additional cross-field validations
	if err := validateCrossField(cfg); err != nil {
		return err
	}

	return nil
}

// validateEnvironment validates the environment field
func validateEnvironment(fl validator.FieldLevel) bool {
	env := fl.Field().String()
	switch env {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

// validateLogLevel validates the log level field
func validateLogLevel(fl validator.FieldLevel) bool {
	level := fl.Field().String()
	switch level {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

// validateOrderMode validates the execution mode flag
func validateOrderMode(fl validator.FieldLevel) bool {
	switch models.ExecutionMode(fl.Field().String()) {
	case models.ModeDryRun, models.ModeManual, models.ModeAuto:
		return true
	default:
		return false
	}
}

// validateCrossField performs cross-field validations
func validateCrossField(cfg *Config) error {
	if cfg.Engine.UnitStake > cfg.Engine.MaxStake {
		return fmt.Errorf("%w: engine.unit_stake (%d) exceeds engine.max_stake (%d)",
			models.ErrConfigInvalid, cfg.Engine.UnitStake, cfg.Engine.MaxStake)
	}

	if cfg.Collector.Mode == "stream" && cfg.Collector.FeedURL == "" {
		return fmt.Errorf("%w: collector.feed_url is required in stream mode", models.ErrConfigInvalid)
	}

	return nil
}

// formatValidationErrors converts validator errors into a readable message
func formatValidationErrors(errs validator.ValidationErrors) error {
	msg := "configuration validation failed:"
	for _, e := range errs {
		msg += fmt.Sprintf(" field '%s' failed on '%s' rule;", e.Namespace(), e.Tag())
	}
	return fmt.Errorf("%w: %s", models.ErrConfigInvalid, msg)
}
