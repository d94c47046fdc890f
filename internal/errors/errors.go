package errors

import (
	"errors"
	"fmt"
)

// Re-export standard errors package functions
var (
	As     = errors.As
	Is     = errors.Is
	New    = errors.New
	Unwrap = errors.Unwrap
)

// Define domain-specific error kinds (spec §7 taxonomy)
var (
	ErrInvalidRequest                = errors.New("invalid request")
	ErrFeatureServiceNotFound        = errors.New("feature service not found")
	ErrFeatureViewNotFound           = errors.New("feature view not found")
	ErrFeatureViewNotFoundForService = errors.New("feature view not found for service")
	ErrComputedViewUnsupported       = errors.New("on-demand feature view is not supported")
	ErrMissingEntityValues           = errors.New("missing entity values")
	ErrRaggedEntityVectors           = errors.New("entity vectors have differing lengths")
	ErrInvalidKeyFormat              = errors.New("invalid entity key format")
	ErrUnsupportedKeyVersion         = errors.New("unsupported entity key serialization version")
	ErrUnsupportedType               = errors.New("unsupported value type")
	ErrBackendUnavailable            = errors.New("online store backend unavailable")
	ErrSnapshotStale                 = errors.New("registry snapshot is stale")
)

// Wrap wraps an error with additional context.
func Wrap(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// WrapWithCode wraps an error with a specific error kind, preserving both in
// the chain so errors.Is matches either.
func WrapWithCode(err error, code error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	wrapped := fmt.Errorf(format+": %w", append(args, err)...)
	return fmt.Errorf("%w: %w", code, wrapped)
}

var knownKinds = []error{
	ErrInvalidRequest,
	ErrFeatureServiceNotFound,
	ErrFeatureViewNotFound,
	ErrFeatureViewNotFoundForService,
	ErrComputedViewUnsupported,
	ErrMissingEntityValues,
	ErrRaggedEntityVectors,
	ErrInvalidKeyFormat,
	ErrUnsupportedKeyVersion,
	ErrUnsupportedType,
	ErrBackendUnavailable,
	ErrSnapshotStale,
}

// GetErrorKind extracts the known sentinel kind from an error chain, or nil
// if the error does not wrap one of them.
func GetErrorKind(err error) error {
	if err == nil {
		return nil
	}
	for _, kind := range knownKinds {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// GetErrorCodeString returns the adapter-neutral string code for an error.
func GetErrorCodeString(err error) string {
	switch GetErrorKind(err) {
	case ErrInvalidRequest:
		return "INVALID_REQUEST"
	case ErrFeatureServiceNotFound:
		return "FEATURE_SERVICE_NOT_FOUND"
	case ErrFeatureViewNotFound:
		return "FEATURE_VIEW_NOT_FOUND"
	case ErrFeatureViewNotFoundForService:
		return "FEATURE_VIEW_NOT_FOUND_FOR_SERVICE"
	case ErrComputedViewUnsupported:
		return "COMPUTED_VIEW_UNSUPPORTED"
	case ErrMissingEntityValues:
		return "MISSING_ENTITY_VALUES"
	case ErrRaggedEntityVectors:
		return "RAGGED_ENTITY_VECTORS"
	case ErrInvalidKeyFormat:
		return "INVALID_KEY_FORMAT"
	case ErrUnsupportedKeyVersion:
		return "UNSUPPORTED_KEY_VERSION"
	case ErrUnsupportedType:
		return "UNSUPPORTED_TYPE"
	case ErrBackendUnavailable:
		return "BACKEND_UNAVAILABLE"
	case ErrSnapshotStale:
		return "SNAPSHOT_STALE"
	default:
		return "INTERNAL_SERVER_ERROR"
	}
}

// HTTPStatus maps an error kind to the adapter-facing HTTP status, per
// spec §7's surface column.
func HTTPStatus(err error) int {
	switch GetErrorKind(err) {
	case ErrFeatureServiceNotFound, ErrFeatureViewNotFound, ErrFeatureViewNotFoundForService:
		return 404
	case ErrInvalidRequest, ErrComputedViewUnsupported, ErrMissingEntityValues, ErrRaggedEntityVectors:
		return 400
	case ErrInvalidKeyFormat, ErrUnsupportedKeyVersion, ErrUnsupportedType, ErrBackendUnavailable:
		return 500
	default:
		return 500
	}
}
