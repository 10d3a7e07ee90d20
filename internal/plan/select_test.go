// SPDX-License-Identifier: MIT

package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelect(t *testing.T) {
	plans := []Plan{{RoomName: "a"}, {RoomName: "b"}, {RoomName: "c"}}

	all, err := Select(plans, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, 2, all[2].Index)

	some, err := Select(plans, []string{"2", " 0 ", "2"})
	require.NoError(t, err)
	require.Len(t, some, 2)
	assert.Equal(t, "c", some[0].Plan.RoomName)
	assert.Equal(t, 0, some[1].Index)

	for _, bad := range []string{"3", "-1", "x", ""} {
		_, err := Select(plans, []string{bad})
		assert.ErrorIs(t, err, ErrValidation, "code %q", bad)
	}
}
