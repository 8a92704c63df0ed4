package domainerrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
)

// DomainErrorsSuite tests the domain error primitives.
//
// These are used at every trust boundary; the tests pin the invariants
// "wrapped domain errors preserve the original code" and "errors.Is matches
// by code".
type DomainErrorsSuite struct {
	suite.Suite
}

func TestDomainErrorsSuite(t *testing.T) {
	suite.Run(t, new(DomainErrorsSuite))
}

func (s *DomainErrorsSuite) TestErrorInterface() {
	s.Run("returns message when present", func() {
		err := &Error{Code: CodeNotFound, Message: "exchange not found"}
		s.Equal("exchange not found", err.Error())
	})

	s.Run("returns code when message is empty", func() {
		err := &Error{Code: CodeNotFound}
		s.Equal("not_found", err.Error())
	})
}

func (s *DomainErrorsSuite) TestUnwrap() {
	s.Run("returns wrapped error", func() {
		inner := errors.New("connection refused")
		err := &Error{Code: CodeInternal, Message: "store error", Err: inner}
		s.Equal(inner, err.Unwrap())
	})

	s.Run("returns nil when no wrapped error", func() {
		err := &Error{Code: CodeNotFound, Message: "not found"}
		s.Nil(err.Unwrap())
	})
}

func (s *DomainErrorsSuite) TestIsMatching() {
	s.Run("matches by code only", func() {
		err1 := &Error{Code: CodeConflict, Message: "workflow already exists"}
		err2 := &Error{Code: CodeConflict, Message: "version mismatch"}
		s.True(errors.Is(err1, err2))
	})

	s.Run("does not match different codes", func() {
		err1 := &Error{Code: CodeNotFound}
		err2 := &Error{Code: CodeConflict}
		s.False(errors.Is(err1, err2))
	})
}

func (s *DomainErrorsSuite) TestWrapPreservesCode() {
	inner := New(CodeConflict, "version mismatch")
	wrapped := Wrap(inner, CodeInternal, "failed to save exchange")

	s.True(HasCode(wrapped, CodeConflict))
	s.False(HasCode(wrapped, CodeInternal))
	s.Equal("failed to save exchange", wrapped.Error())
}

func (s *DomainErrorsSuite) TestHasCode() {
	s.True(HasCode(New(CodeForbidden, "holder mismatch"), CodeForbidden))
	s.False(HasCode(errors.New("plain error"), CodeForbidden))
	s.False(HasCode(nil, CodeForbidden))
}
