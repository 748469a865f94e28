package lander_error

import (
	"errors"
	"fmt"
	"strings"
)

// Kind is the closed set of failure kinds a run can report
type Kind int

const (
	// KindStructural covers missing files, malformed containers and path traversal
	KindStructural Kind = iota + 1
	// KindSchema covers a missing required column or a column mismatch during consolidation
	KindSchema
	// KindEncoding is a columnar writer failure
	KindEncoding
	// KindTask is an abnormal termination of an isolated worker
	KindTask
	// KindTransmission is a storage failure while publishing
	KindTransmission
)

func (k Kind) String() string {
	switch k {
	case KindStructural:
		return "structural"
	case KindSchema:
		return "schema"
	case KindEncoding:
		return "encoding"
	case KindTask:
		return "task"
	case KindTransmission:
		return "transmission"
	default:
		return "unknown"
	}
}

// TransmissionKind classifies a storage failure, purely for diagnostics
type TransmissionKind string

const (
	TransmissionAuth            TransmissionKind = "auth"
	TransmissionLocation        TransmissionKind = "location"
	TransmissionNotFound        TransmissionKind = "not_found"
	TransmissionMalformed       TransmissionKind = "malformed"
	TransmissionTransientServer TransmissionKind = "transient_server"
	TransmissionTimeout         TransmissionKind = "timeout"
	TransmissionDispatch        TransmissionKind = "dispatch"
	TransmissionUnknown         TransmissionKind = "unknown"
)

// Hint returns a human readable troubleshooting hint for the transmission kind
func (k TransmissionKind) Hint(bucket string) string {
	switch k {
	case TransmissionAuth:
		return fmt.Sprintf("ACCESS DENIED: check credentials are configured and allow writing objects to bucket '%s'", bucket)
	case TransmissionLocation:
		return fmt.Sprintf("REGION MISMATCH: bucket '%s' exists in a different region, check the configured region", bucket)
	case TransmissionNotFound:
		return fmt.Sprintf("bucket '%s' may not exist or is not accessible", bucket)
	case TransmissionMalformed:
		return "invalid request parameters"
	case TransmissionTransientServer:
		return "storage server error, retrying the run may help"
	case TransmissionTimeout:
		return "request timed out, check network connectivity"
	case TransmissionDispatch:
		return "request could not be sent, check endpoint and network configuration"
	default:
		return "check storage configuration and connectivity"
	}
}

var (
	ErrMissingColumn   = errors.New("required column missing")
	ErrSchemaMismatch  = errors.New("column schema mismatch")
	ErrPathTraversal   = errors.New("entry path escapes destination directory")
	ErrDepthExceeded   = errors.New("nested container depth limit exceeded")
	ErrSizeExceeded    = errors.New("expanded size limit exceeded")
	ErrUnknownCategory = errors.New("no data for category")
	ErrWorkerPanic     = errors.New("worker terminated abnormally")
)

// Error is the single error type returned by the extraction and transform core.
// Only the fields relevant to the Kind are populated.
type Error struct {
	Kind Kind
	// Path is the source file or container the failure relates to
	Path string
	// Key is the category key or destination key the failure relates to
	Key string
	// ExpectedRows is the row count an encoding was attempted for
	ExpectedRows int64
	// Bucket and Transmission are set for KindTransmission
	Bucket       string
	Transmission TransmissionKind
	Err          error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	b.WriteString(" error")
	if e.Path != "" {
		fmt.Fprintf(&b, " for %s", e.Path)
	}
	if e.Key != "" {
		if e.Kind == KindTransmission && e.Bucket != "" {
			fmt.Fprintf(&b, " (s3://%s/%s)", e.Bucket, e.Key)
		} else {
			fmt.Fprintf(&b, " (key %s)", e.Key)
		}
	}
	if e.Kind == KindEncoding {
		fmt.Fprintf(&b, ", expected %d rows", e.ExpectedRows)
	}
	if e.Kind == KindTransmission {
		fmt.Fprintf(&b, " [%s] %s", e.Transmission, e.Transmission.Hint(e.Bucket))
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Structural(path string, err error) error {
	return &Error{Kind: KindStructural, Path: path, Err: err}
}

func Schema(path string, err error) error {
	return &Error{Kind: KindSchema, Path: path, Err: err}
}

// CategorySchema is a schema failure attributed to a category key rather than a file
func CategorySchema(key, path string, err error) error {
	return &Error{Kind: KindSchema, Key: key, Path: path, Err: err}
}

func CategoryStructural(key string, err error) error {
	return &Error{Kind: KindStructural, Key: key, Err: err}
}

func Encoding(path string, expectedRows int64, err error) error {
	return &Error{Kind: KindEncoding, Path: path, ExpectedRows: expectedRows, Err: err}
}

func Task(path string, err error) error {
	return &Error{Kind: KindTask, Path: path, Err: err}
}

func Transmission(bucket, key string, kind TransmissionKind, err error) error {
	return &Error{Kind: KindTransmission, Bucket: bucket, Key: key, Transmission: kind, Err: err}
}

// KindOf returns the kind of the first *Error in the chain, or 0 if there is none
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// IsKind reports whether err carries an *Error of the given kind
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
