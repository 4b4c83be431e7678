package task

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCategory(t *testing.T) {
	cases := []struct {
		in      string
		want    *Category
		wantErr bool
	}{
		{in: "", want: nil},
		{in: "none", want: nil},
		{in: "today", want: ptr(CategoryToday)},
		{in: " Weekly ", want: ptr(CategoryWeekly)},
		{in: "MONTHLY", want: ptr(CategoryMonthly)},
		{in: "yearly", wantErr: true},
	}
	for _, tc := range cases {
		got, err := ParseCategory(tc.in)
		if tc.wantErr {
			assert.Error(t, err, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestNewTask_InitialState(t *testing.T) {
	now := time.Date(2026, 2, 7, 9, 0, 0, 0, time.UTC)
	cat := CategoryWeekly

	task := newTask("slay dragon", &cat, now)

	assert.NotEmpty(t, task.ID)
	assert.Equal(t, "slay dragon", task.Text)
	assert.False(t, task.Completed)
	assert.Equal(t, now, task.CreatedAt)
	require.True(t, task.HasCategory())
	assert.Equal(t, CategoryWeekly, *task.Category)

	// the caller's category value is not aliased
	cat = CategoryToday
	assert.Equal(t, CategoryWeekly, *task.Category)
}

func ptr[T any](v T) *T { return &v }
