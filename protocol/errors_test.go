package protocol

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProtocolError(t *testing.T) {
	tests := []struct {
		name string
		err  *ProtocolError
		want string
	}{
		{
			name: "known status",
			err:  &ProtocolError{Operation: "delete", StatusCode: StatusFileNotFound},
			want: "delete failed: file not found (0x87)",
		},
		{
			name: "with detail",
			err:  &ProtocolError{Operation: "start program", StatusCode: StatusOutOfRange, Detail: "program not found"},
			want: "start program failed: program not found (data contains out-of-range values, 0xC0)",
		},
		{
			name: "unknown status",
			err:  &ProtocolError{Operation: "close", StatusCode: 0x7F},
			want: "close failed: unknown status code 0x7F (0x7F)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestStatusHelpers(t *testing.T) {
	wrapped := fmt.Errorf("download: %w", &ProtocolError{Operation: "open read", StatusCode: StatusFileNotFound})

	assert.True(t, IsProtocolError(wrapped))
	assert.True(t, IsNotFound(wrapped))

	s, ok := StatusOf(wrapped)
	assert.True(t, ok)
	assert.Equal(t, StatusFileNotFound, s)

	_, ok = StatusOf(fmt.Errorf("plain"))
	assert.False(t, ok)
	assert.False(t, IsNotFound(nil))

	assert.True(t, StatusSuccess.OK())
	assert.Equal(t, "no more handles", StatusNoMoreHandles.String())
}

func TestValidateName(t *testing.T) {
	assert.ErrorIs(t, ValidateName(""), ErrEmptyName)
	assert.NoError(t, ValidateName("a"))
	assert.NoError(t, ValidateName("123456789012345678"))
	assert.ErrorIs(t, ValidateName("1234567890123456789"), ErrNameTooLong)

	assert.ErrorIs(t, ValidateName("*.rxe"), ErrWildcardName)
	assert.ErrorIs(t, ValidateName("prog?.rxe"), ErrWildcardName)
	assert.NoError(t, ValidatePattern("*.rxe"))
	assert.NoError(t, ValidatePattern("prog?.rxe"))
	assert.ErrorIs(t, ValidatePattern(""), ErrEmptyName)
	assert.ErrorIs(t, ValidatePattern("*.1234567890123456789"), ErrNameTooLong)
}
