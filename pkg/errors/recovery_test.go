package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecover_WithPanic(t *testing.T) {
	testFunc := func() (err error) {
		defer Recover(&err, "TestOperation")
		panic("test panic message")
	}

	err := testFunc()
	require.Error(t, err)

	var panicErr *PanicError
	require.True(t, As(err, &panicErr))
	assert.Equal(t, "TestOperation", panicErr.Operation)
	assert.Equal(t, "test panic message", panicErr.PanicValue)
	assert.NotEmpty(t, panicErr.StackTrace)
	assert.Equal(t, "panic in TestOperation: test panic message", panicErr.Error())
	assert.Contains(t, panicErr.String(), "Stack trace:")
}

func TestRecover_WithoutPanic(t *testing.T) {
	testFunc := func() (err error) {
		defer Recover(&err, "TestOperation")
		return nil
	}
	assert.NoError(t, testFunc())
}

func TestRecover_KeepsPanicAsPrimaryError(t *testing.T) {
	testFunc := func() (err error) {
		defer Recover(&err, "TestOperation")
		err = fmt.Errorf("original error")
		panic("panic after error")
	}

	err := testFunc()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic in TestOperation")

	var panicErr *PanicError
	assert.True(t, As(err, &panicErr))
}

func TestSafeExecute(t *testing.T) {
	tests := []struct {
		name       string
		fn         func() error
		wantErr    bool
		wantPanic  bool
		wantSubstr string
	}{
		{
			name: "success",
			fn:   func() error { return nil },
		},
		{
			name:       "returned error",
			fn:         func() error { return New("plain failure") },
			wantErr:    true,
			wantSubstr: "plain failure",
		},
		{
			name: "index out of range",
			fn: func() error {
				var s []int
				_ = s[3]
				return nil
			},
			wantErr:    true,
			wantPanic:  true,
			wantSubstr: "panic in tree.build",
		},
		{
			name:       "error value panic",
			fn:         func() error { panic(New("matrix dimension error")) },
			wantErr:    true,
			wantPanic:  true,
			wantSubstr: "matrix dimension error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := SafeExecute("tree.build", tt.fn)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantSubstr)

			var panicErr *PanicError
			assert.Equal(t, tt.wantPanic, As(err, &panicErr))
		})
	}
}
