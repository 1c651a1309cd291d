package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

type DomainErrorsSuite struct {
	suite.Suite
}

func TestDomainErrorsSuite(t *testing.T) {
	suite.Run(t, new(DomainErrorsSuite))
}

func (s *DomainErrorsSuite) TestErrorText() {
	s.Run("message wins over code", func() {
		err := &Error{Code: CodeNotFound, Message: "registration not found"}
		s.Equal("registration not found", err.Error())
	})

	s.Run("code is used when message is empty", func() {
		err := &Error{Code: CodeForbidden}
		s.Equal("forbidden", err.Error())
	})
}

func (s *DomainErrorsSuite) TestWrapPreservesCode() {
	s.Run("plain error takes the supplied code", func() {
		err := Wrap(errors.New("connection reset"), CodeInternal, "failed to list registrations")
		s.True(HasCode(err, CodeInternal))
		s.Equal("failed to list registrations", err.Error())
	})

	s.Run("domain error keeps its original code", func() {
		inner := New(CodeTimeout, "transaction aborted")
		err := Wrap(inner, CodeInternal, "failed to register")
		s.True(HasCode(err, CodeTimeout))
		s.ErrorIs(err, inner)
	})

	s.Run("code survives fmt wrapping", func() {
		err := fmt.Errorf("submit: %w", New(CodeConflict, "duplicate"))
		s.True(HasCode(err, CodeConflict))
		s.False(HasCode(err, CodeInternal))
	})
}

func (s *DomainErrorsSuite) TestIsMatchesByCode() {
	a := New(CodeNotFound, "registration not found")
	b := New(CodeNotFound, "token not found")
	s.ErrorIs(a, b)
	s.NotErrorIs(a, New(CodeInternal, "registration not found"))
	s.False(errors.Is(a, errors.New("registration not found")))
}
