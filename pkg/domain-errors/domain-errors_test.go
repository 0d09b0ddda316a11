package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

// DomainErrorsSuite tests the domain error primitives.
//
// Justification: these primitives sit at every trust boundary of the bot.
// Unit tests ensure invariants like "wrapped domain errors preserve original code"
// and "errors.Is matches by code" are maintained.
type DomainErrorsSuite struct {
	suite.Suite
}

func TestDomainErrorsSuite(t *testing.T) {
	suite.Run(t, new(DomainErrorsSuite))
}

func (s *DomainErrorsSuite) TestErrorInterface() {
	s.Run("returns message when present", func() {
		err := &Error{Code: CodeUpstream, Message: "provider rejected credentials"}
		s.Equal("provider rejected credentials", err.Error())
	})

	s.Run("returns code when message is empty", func() {
		err := &Error{Code: CodeSessionExpired}
		s.Equal("session_expired", err.Error())
	})
}

func (s *DomainErrorsSuite) TestUnwrap() {
	cause := fmt.Errorf("connection refused")
	err := Wrap(cause, CodeUpstream, "authenticate call failed")
	s.ErrorIs(err, cause)
}

func (s *DomainErrorsSuite) TestIsMatchesByCode() {
	err := New(CodeSessionExpired, "token rejected")
	s.ErrorIs(err, New(CodeSessionExpired, "different message"))
	s.NotErrorIs(err, New(CodeUpstream, "token rejected"))
}

func (s *DomainErrorsSuite) TestWrapPreservesOriginalCode() {
	inner := New(CodeSessionExpired, "401 from provider")
	wrapped := Wrap(inner, CodeUpstream, "loan fetch failed")
	s.True(HasCode(wrapped, CodeSessionExpired))
	s.False(HasCode(wrapped, CodeUpstream))
}

func (s *DomainErrorsSuite) TestHasCode() {
	s.True(HasCode(New(CodeStorage, "put failed"), CodeStorage))
	s.False(HasCode(errors.New("plain"), CodeStorage))
	s.False(HasCode(nil, CodeStorage))
}

func (s *DomainErrorsSuite) TestRetryable() {
	s.True(Retryable(New(CodeValidation, "bad email")))
	s.True(Retryable(New(CodeUpstream, "provider down")))
	s.True(Retryable(New(CodeProtocol, "missing otp")))
	s.True(Retryable(New(CodeTimeout, "deadline exceeded")))
	s.False(Retryable(New(CodeStorage, "redis down")))
	s.False(Retryable(New(CodeSessionExpired, "401")))
	s.False(Retryable(errors.New("plain")))
}
