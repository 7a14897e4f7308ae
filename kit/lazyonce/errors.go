package lazyonce

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrConstruction  = errors.New("lazyonce: construction failed")
	ErrConfiguration = errors.New("lazyonce: configuration rejected")
	ErrNilFactory    = errors.New("lazyonce: nil factory")
)

// ConstructionError is returned by Get when the factory failed. Under the
// Poison policy the same *ConstructionError is returned on every later call.
type ConstructionError struct {
	Strategy Strategy
	Cause    error
}

func (e *ConstructionError) Error() string {
	var b strings.Builder
	b.WriteString(ErrConstruction.Error())
	b.WriteString(" (")
	b.WriteString(e.Strategy.String())
	b.WriteString(")")
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *ConstructionError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrConstruction}
	}
	return []error{ErrConstruction, e.Cause}
}

type Reason uint8

const (
	ReasonAlreadyConfigured Reason = iota + 1
	ReasonConstructionStarted
)

func (r Reason) String() string {
	switch r {
	case ReasonAlreadyConfigured:
		return "already configured"
	case ReasonConstructionStarted:
		return "construction already started"
	default:
		return "unknown"
	}
}

// ConfigurationError is returned by Configure when it is called twice or
// after the first Get.
type ConfigurationError struct {
	Reason Reason
}

func (e *ConfigurationError) Error() string {
	return ErrConfiguration.Error() + ": " + e.Reason.String()
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

// PanicError is the cause recorded when a factory panics.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("lazyonce: factory panicked: %v", e.Value)
}

func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
