package kv

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRedisDefaultsPrefix(t *testing.T) {
	r := NewRedis(nil, "")
	assert.Equal(t, "mebelshop:store:", r.prefix)

	r = NewRedis(nil, "custom:")
	assert.Equal(t, "custom:", r.prefix)
}
