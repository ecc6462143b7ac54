package iso9660

import "errors"

// Sentinel errors correspond to the documented failure kinds of §4.B's
// validate_structure procedure.
var (
	ErrSystemBlockTooShort      = errors.New("system area too short")
	ErrSectorTooShort           = errors.New("sector read too short")
	ErrInvalidRequiredDescriptors = errors.New("missing required volume descriptors")
	ErrInvalidBootIndicator     = errors.New("invalid boot indicator")
	ErrInvalidBootSignature     = errors.New("invalid boot catalog signature")
	ErrInvalidBootCatalog       = errors.New("invalid boot catalog")
	ErrInsufficientDeviceCapacity = errors.New("device too small for image")
	ErrNotBootable              = errors.New("image has no El Torito boot record")
)
