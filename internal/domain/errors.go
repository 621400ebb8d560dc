package domain

import "github.com/TINANOROUZI/24hr-stories/pkg/errors"

const (
	CodeUnsupportedType   = "unsupported_type"
	CodeTooLarge          = "too_large"
	CodeDecodeFailed      = "decode_failed"
	CodePersistenceFailed = "persistence_failed"
	CodeEmptyCollection   = "empty_collection"
)

var (
	ErrUnsupportedType   = errors.NewWithCode(CodeUnsupportedType, "unsupported media type")
	ErrTooLarge          = errors.NewWithCode(CodeTooLarge, "media too large")
	ErrDecodeFailed      = errors.NewWithCode(CodeDecodeFailed, "media could not be decoded")
	ErrPersistenceFailed = errors.NewWithCode(CodePersistenceFailed, "storage rejected the write")
	ErrEmptyCollection   = errors.NewWithCode(CodeEmptyCollection, "collection is empty")
)
