package fetch

import "errors"

var (
	// ErrFamilyNotFound means the catalog has no such family.
	ErrFamilyNotFound = errors.New("family not found in catalog")
	// ErrNoUsableVariant means no weight/style of the family can be resolved.
	ErrNoUsableVariant = errors.New("family has no usable variant")
	// ErrNoFile means the catalog lists the variant without a download URL.
	ErrNoFile = errors.New("catalog has no file for variant")
	// ErrLoadTimeout means an injected style sheet never signalled load or error.
	ErrLoadTimeout = errors.New("style sheet load timed out")
	// ErrUnknownHandle is returned by AwaitLoad for removed or foreign handles.
	ErrUnknownHandle = errors.New("unknown resource handle")
)

// IsPermanent reports whether err is a catalog miss that retrying cannot fix.
func IsPermanent(err error) bool {
	return errors.Is(err, ErrFamilyNotFound) || errors.Is(err, ErrNoUsableVariant) || errors.Is(err, ErrNoFile)
}
