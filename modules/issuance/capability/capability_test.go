package capability

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	test := func(input string, expected ID) {
		t.Run(input, func(t *testing.T) {
			t.Parallel()
			actual, err := Parse(input)
			assert.NoError(t, err)
			assert.Equal(t, expected, actual)
		})
	}
	testError := func(input string) {
		t.Run(input, func(t *testing.T) {
			t.Parallel()
			_, err := Parse(input)
			assert.Error(t, err)
		})
	}

	test("0x01ffc9a7", Discovery)
	test("01ffc9a7", Discovery)
	test("0xd9b67a26", MultiTokenLedger)
	test("0xD9B67A26", MultiTokenLedger)
	test("0x7965db0b", RoleControl)
	test("0xffffffff", ID{0xff, 0xff, 0xff, 0xff})

	testError("")
	testError("0x")
	testError("0x01ffc9")
	testError("0x01ffc9a7ff")
	testError("0xzzzzzzzz")
}

func TestString(t *testing.T) {
	assert.Equal(t, "0x01ffc9a7", Discovery.String())
	assert.Equal(t, "0xd9b67a26", MultiTokenLedger.String())
	assert.Equal(t, "0x7965db0b", RoleControl.String())
}

func TestIsSupported(t *testing.T) {
	assert.True(t, IsSupported(Discovery))
	assert.True(t, IsSupported(MultiTokenLedger))
	assert.True(t, IsSupported(RoleControl))
	assert.False(t, IsSupported(ID{0xff, 0xff, 0xff, 0xff}))
	assert.False(t, IsSupported(ID{}))
}
