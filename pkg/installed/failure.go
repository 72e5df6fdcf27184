package installed

import (
	"errors"
	"fmt"

	apperrors "github.com/matzehuels/depsynth/pkg/errors"
)

// Kind classifies why a version lookup failed.
type Kind int

const (
	// NotInstalled means the package could not be found from the search
	// directory.
	NotInstalled Kind = iota + 1
	// Corrupt means the package.json exists but could not be read or parsed.
	Corrupt
	// MissingVersion means the package.json has no version field.
	MissingVersion
	// PathInconsistent means the resolved entry file does not live below a
	// node_modules directory named after the package.
	PathInconsistent
)

var kindNames = map[Kind]string{
	NotInstalled:     "not installed",
	Corrupt:          "corrupt manifest",
	MissingVersion:   "missing version",
	PathInconsistent: "inconsistent path",
}

var kindCodes = map[Kind]apperrors.Code{
	NotInstalled:     apperrors.ErrCodePackageNotFound,
	Corrupt:          apperrors.ErrCodeInvalidManifest,
	MissingVersion:   apperrors.ErrCodeMissingVersion,
	PathInconsistent: apperrors.ErrCodeInconsistentPath,
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Fatal reports whether the failure means the installation itself is broken.
func (k Kind) Fatal() bool {
	return k == Corrupt || k == MissingVersion
}

// Code returns the application error code for k.
func (k Kind) Code() apperrors.Code {
	if c, ok := kindCodes[k]; ok {
		return c
	}
	return apperrors.ErrCodeInternal
}

// Failure is the error returned by [Resolver.Resolve].
type Failure struct {
	Kind Kind
	Name string // package name that was looked up
	Path string // package.json or entry file involved, when known
	Err  error  // underlying cause, when any
}

func (f *Failure) Error() string {
	msg := fmt.Sprintf("%s: %s", f.Name, f.Kind)
	if f.Path != "" {
		msg += fmt.Sprintf(" (%s)", f.Path)
	}
	if f.Err != nil {
		msg += ": " + f.Err.Error()
	}
	return msg
}

func (f *Failure) Unwrap() error { return f.Err }

// Code lets apperrors.Is and apperrors.GetCode classify the failure.
func (f *Failure) Code() apperrors.Code { return f.Kind.Code() }

// KindOf returns the failure kind carried by err.
func KindOf(err error) (Kind, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind, true
	}
	return 0, false
}

// IsFatal reports whether err is a lookup failure that must abort the run.
func IsFatal(err error) bool {
	k, ok := KindOf(err)
	return ok && k.Fatal()
}
