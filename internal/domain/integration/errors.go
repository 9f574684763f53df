package integration

import "errors"

var (
	// Platform errors
	ErrPlatformNotConfigured   = errors.New("integration: platform not configured")
	ErrPlatformRequestFailed   = errors.New("integration: platform request failed")
	ErrPlatformInvalidResponse = errors.New("integration: invalid platform response")
	ErrPlatformAuthFailed      = errors.New("integration: platform authentication failed")
	ErrPlatformRateLimited     = errors.New("integration: platform rate limited")
	ErrInvalidSignature        = errors.New("integration: invalid webhook signature")

	// Credential errors
	ErrCredentialsMissing = errors.New("integration: provider credentials missing")

	// Generic import errors
	ErrUnexpectedShape = errors.New("integration: payload does not resolve to an item array")
	ErrFieldMissing    = errors.New("integration: mapped field missing or empty")

	// Webhook errors
	ErrTenantUnresolved = errors.New("integration: delivery could not be resolved to a tenant")
)
