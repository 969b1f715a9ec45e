package wallet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGeneratedTypes(t *testing.T) {
	msg := ExecuteMsg{
		RmHot: &RmHot{
			Address: "terra1worker",
		},
	}

	msgBytes, err := msg.Marshal()
	assert.NoError(t, err)
	assert.Equal(t, `{"rm_hot":{"address":"terra1worker"}}`, string(msgBytes))
}
