package errors_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-loadout/internal/errors"
)

type ErrorsTestSuite struct {
	suite.Suite
}

func TestErrorsSuite(t *testing.T) {
	suite.Run(t, new(ErrorsTestSuite))
}

func (s *ErrorsTestSuite) TestNewError() {
	testCases := []struct {
		name     string
		code     errors.Code
		message  string
		expected string
	}{
		{
			name:     "not found error",
			code:     errors.CodeNotFound,
			message:  "item not found",
			expected: "NOT_FOUND: item not found",
		},
		{
			name:     "capacity error",
			code:     errors.CodeResourceExhausted,
			message:  "inventory is full",
			expected: "RESOURCE_EXHAUSTED: inventory is full",
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			err := errors.New(tc.code, tc.message)
			s.Assert().Equal(tc.expected, err.Error())
			s.Assert().Equal(tc.code, err.Code)
			s.Assert().Equal(tc.message, err.Message)
		})
	}
}

func (s *ErrorsTestSuite) TestErrorWithMeta() {
	err := errors.NotFound("item not found").
		WithMeta("item_id", "weapon_axe").
		WithMeta("player_id", "p1")

	s.Assert().Equal("weapon_axe", err.Meta["item_id"])
	s.Assert().Equal("p1", err.Meta["player_id"])
}

func (s *ErrorsTestSuite) TestWrap() {
	baseErr := fmt.Errorf("connection refused")
	wrapped := errors.Wrap(baseErr, "failed to save record")

	s.Assert().Equal(errors.CodeInternal, wrapped.Code)
	s.Assert().Equal("failed to save record", wrapped.Message)
	s.Assert().Equal(baseErr, wrapped.Unwrap())
}

func (s *ErrorsTestSuite) TestWrapPreservesCode() {
	baseErr := errors.NotFound("record not found")
	wrapped := errors.Wrap(baseErr, "save game not found")

	s.Assert().Equal(errors.CodeNotFound, wrapped.Code)
	s.Assert().Equal(baseErr, wrapped.Unwrap())
}

func (s *ErrorsTestSuite) TestWrapWithCode() {
	baseErr := fmt.Errorf("i/o timeout")
	wrapped := errors.WrapWithCode(baseErr, errors.CodeUnavailable, "storage unavailable")

	s.Assert().Equal(errors.CodeUnavailable, wrapped.Code)
	s.Assert().Equal(baseErr, wrapped.Unwrap())
}

func (s *ErrorsTestSuite) TestWrapNil() {
	s.Assert().Nil(errors.Wrap(nil, "should be nil"))
	s.Assert().Nil(errors.WrapWithCode(nil, errors.CodeNotFound, "should be nil"))
}

func (s *ErrorsTestSuite) TestErrorIs() {
	err1 := errors.NotFound("test")
	err2 := errors.NotFound("other")
	err3 := errors.InvalidArgument("test")

	s.Assert().True(err1.Is(err2))
	s.Assert().False(err1.Is(err3))
}

func (s *ErrorsTestSuite) TestHelperFunctions() {
	notFoundErr := errors.NotFound("test")
	fullErr := errors.ResourceExhausted("test")
	wrappedErr := errors.Wrap(fullErr, "wrapped")

	s.Assert().True(errors.IsNotFound(notFoundErr))
	s.Assert().False(errors.IsNotFound(fullErr))
	s.Assert().True(errors.IsResourceExhausted(wrappedErr))
	s.Assert().True(errors.IsFailedPrecondition(errors.FailedPreconditionf("version %d", 9)))
}

func (s *ErrorsTestSuite) TestGetCode() {
	err := errors.NotFound("test")
	wrapped := errors.Wrap(err, "wrapped")

	s.Assert().Equal(errors.CodeNotFound, errors.GetCode(wrapped))
	s.Assert().Equal(errors.CodeInternal, errors.GetCode(fmt.Errorf("standard error")))
	s.Assert().Equal(errors.CodeOK, errors.GetCode(nil))
}

func (s *ErrorsTestSuite) TestGetMessage() {
	err := errors.NotFound("user friendly message")
	wrapped := errors.Wrap(err, "wrapped message")

	s.Assert().Equal("user friendly message", errors.GetMessage(err))
	s.Assert().Equal("wrapped message", errors.GetMessage(wrapped))
	s.Assert().Equal("standard error", errors.GetMessage(fmt.Errorf("standard error")))
}

func (s *ErrorsTestSuite) TestRetryable() {
	s.Assert().True(errors.IsRetryable(errors.Unavailable("redis down")))
	s.Assert().True(errors.IsRetryable(fmt.Errorf("unknown")))
	s.Assert().False(errors.IsRetryable(errors.InvalidArgument("bad count")))
	s.Assert().False(errors.IsRetryable(errors.ResourceExhausted("full")))
	s.Assert().False(errors.IsRetryable(nil))
}
