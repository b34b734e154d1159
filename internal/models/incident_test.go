package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusValid(t *testing.T) {
	for _, s := range Statuses() {
		assert.True(t, s.Valid(), "status %q must be valid", s)
	}

	for _, s := range []Status{"", "pending", "Done", "in progress", "Resolved "} {
		assert.False(t, s.Valid(), "status %q must be invalid", s)
	}
}
