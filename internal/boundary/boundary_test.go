package boundary

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/backmassage/ytsub/internal/failure"
)

const debugPath = "/tmp/ytsub.test.log"

type mockReporter struct {
	mock.Mock
}

func (m *mockReporter) Error(format string, args ...any) {
	m.Called(append([]any{format}, args...)...)
}

func (m *mockReporter) Warn(format string, args ...any) {
	m.Called(append([]any{format}, args...)...)
}

func (m *mockReporter) Exception(err error, format string, args ...any) {
	m.Called(append([]any{err, format}, args...)...)
}

func (m *mockReporter) DebugLogPath() string {
	return m.Called().String(0)
}

func (m *mockReporter) Cleanup(deleteDebugFile bool) error {
	return m.Called(deleteDebugFile).Error(0)
}

func TestRun_Success(t *testing.T) {
	rep := &mockReporter{}
	rep.On("Cleanup", true).Return(nil).Once()

	b := New(rep)
	assert.Equal(t, Running, b.State())

	code := b.Run(func() error { return nil })

	assert.Equal(t, ExitSuccess, code)
	assert.Equal(t, Succeeded, b.State())
	assert.NoError(t, b.Err())
	rep.AssertExpectations(t)
	rep.AssertNotCalled(t, "Error", mock.Anything, mock.Anything)
}

func TestRun_SuccessCleanupFailureOnlyWarns(t *testing.T) {
	rep := &mockReporter{}
	rep.On("Cleanup", true).Return(errors.New("busy")).Once()
	rep.On("DebugLogPath").Return(debugPath)
	rep.On("Warn", mock.Anything, debugPath, mock.Anything).Once()

	code := New(rep).Run(func() error { return nil })

	assert.Equal(t, ExitSuccess, code)
	rep.AssertExpectations(t)
}

func TestRun_ValidationFailure(t *testing.T) {
	verr := failure.New(failure.KindValidation, "test")
	rep := &mockReporter{}
	rep.On("Error", "%s", verr).Once()
	rep.On("Cleanup", false).Return(nil).Once()

	b := New(rep)
	code := b.Run(func() error { return verr })

	assert.Equal(t, ExitFailure, code)
	assert.Equal(t, Failed, b.State())
	assert.Same(t, verr, b.Err())
	rep.AssertExpectations(t)
	rep.AssertNumberOfCalls(t, "Error", 1)
	rep.AssertNotCalled(t, "Exception", mock.Anything, mock.Anything)
	rep.AssertNotCalled(t, "Cleanup", true)
}

func TestRun_ValidationSubkinds(t *testing.T) {
	kinds := []failure.Kind{
		failure.KindStringFormatting,
		failure.KindVariableNotFound,
		failure.KindDownloadArchive,
		failure.KindFileNotFound,
		failure.KindInvalidConfig,
	}
	for _, kind := range kinds {
		t.Run(kind.String(), func(t *testing.T) {
			err := failure.New(kind, "bad input")
			rep := &mockReporter{}
			rep.On("Error", "%s", err).Once()
			rep.On("Cleanup", false).Return(nil).Once()

			assert.Equal(t, ExitFailure, New(rep).Run(func() error { return err }))
			rep.AssertExpectations(t)
		})
	}
}

func TestRun_InternalFailure(t *testing.T) {
	uncaught := errors.New("test")
	rep := &mockReporter{}
	rep.On("Exception", uncaught, UncaughtHeader).Once()
	rep.On("DebugLogPath").Return(debugPath)
	rep.On("Error", UncaughtFollowUp, debugPath).Once()
	rep.On("Cleanup", false).Return(nil).Once()

	b := New(rep)
	code := b.Run(func() error { return uncaught })

	assert.Equal(t, ExitFailure, code)
	assert.Equal(t, Failed, b.State())
	rep.AssertExpectations(t)
	rep.AssertNumberOfCalls(t, "Exception", 1)
	rep.AssertNumberOfCalls(t, "Error", 1)
}

func TestRun_Panic(t *testing.T) {
	rep := &mockReporter{}
	rep.On("Exception", mock.MatchedBy(func(err error) bool {
		return failure.KindOf(err) == failure.KindInternal
	}), UncaughtHeader).Once()
	rep.On("DebugLogPath").Return(debugPath)
	rep.On("Error", UncaughtFollowUp, debugPath).Once()
	rep.On("Cleanup", false).Return(nil).Once()

	b := New(rep)
	code := b.Run(func() error { panic("kaboom") })

	assert.Equal(t, ExitFailure, code)
	assert.Equal(t, Failed, b.State())
	assert.Contains(t, b.Err().Error(), "kaboom")
	rep.AssertExpectations(t)
}

func TestUncaughtFollowUpText(t *testing.T) {
	assert.Contains(t, UncaughtFollowUp, "Please upload the error log file '%s'")
	assert.Contains(t, UncaughtFollowUp, IssueURL)
}
