package model

import (
	"github.com/pkg/errors"
)

var (
	ErrConfig                   = errors.New("configuration error")
	ErrInvalidCriteria          = errors.New("invalid selection criteria")
	ErrMissingPlatform          = errors.New("device(s) have no platform defined, platform is required")
	ErrMissingManagementAddress = errors.New("device(s) have no primary IP address defined, a primary IP is required")
	ErrRegistryConflict         = errors.New("conflicting software version records for the same version and platform")
	ErrVersionNotFound          = errors.New("no OS version found in device facts")
)
