// Copyright 2020-2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package exprproto converts between expression trees and the cel.expr
// protobuf interchange schema.
//
// Encoding is total for trees produced by the parser. Decoding validates its
// input: every expression must have a positive id that is unique in its tree
// and a set expr_kind, and every constant must have a set constant_kind.
// Features of the schema that have no counterpart in package ast, such as
// optional list elements and two-variable comprehensions, are rejected.
package exprproto

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingField indicates that a required field was not set.
	ErrMissingField = errors.New("missing required field")
	// ErrInvalidExpressionKind indicates an expression that has no
	// equivalent on the other side of the conversion.
	ErrInvalidExpressionKind = errors.New("invalid expression kind")
	// ErrInvalidConstantKind indicates a constant that has no equivalent on
	// the other side of the conversion, such as a legacy duration_value.
	ErrInvalidConstantKind = errors.New("invalid constant kind")
	// ErrInvalidID indicates a zero, negative or duplicate id.
	ErrInvalidID = errors.New("invalid id")
)

// ConversionError is returned when an expression cannot be converted.
//
// Kind is one of the Err* sentinels in this package, so callers can test for
// it with [errors.Is].
type ConversionError struct {
	Kind error
	// The protobuf name of the offending field, such as "expr_kind" or
	// "select_expr.operand".
	Field string
	// The id of the expression the field belongs to, or zero if not known.
	ID int64
}

// Error implements [error].
func (e *ConversionError) Error() string {
	if e.ID == 0 {
		return fmt.Sprintf("%s: %v", e.Field, e.Kind)
	}
	return fmt.Sprintf("expr %d: %s: %v", e.ID, e.Field, e.Kind)
}

// Unwrap returns e.Kind.
func (e *ConversionError) Unwrap() error {
	return e.Kind
}

func missing(id int64, field string) error {
	return &ConversionError{Kind: ErrMissingField, Field: field, ID: id}
}

func invalidKind(id int64, field string) error {
	return &ConversionError{Kind: ErrInvalidExpressionKind, Field: field, ID: id}
}

// at fills in the expression id of err, if err is a [ConversionError] that
// does not have one yet.
func at(err error, id int64) error {
	var cerr *ConversionError
	if errors.As(err, &cerr) && cerr.ID == 0 {
		cerr.ID = id
	}
	return err
}
