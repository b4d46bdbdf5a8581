// Copyright (c) 2026 SecurePass. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pointer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/securepass/pkg/pointer"
)

/*
TestPointer covers To and Val with present and absent values.
*/
func TestPointer(t *testing.T) {
	notes := pointer.To("recovery codes in the safe")
	assert.Equal(t, "recovery codes in the safe", pointer.Val(notes))

	var absent *string
	assert.Equal(t, "", pointer.Val(absent))
	assert.Equal(t, 0, pointer.Val[int](nil))
}
