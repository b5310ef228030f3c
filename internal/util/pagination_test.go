package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginate(t *testing.T) {
	tests := []struct {
		name       string
		page, size int
		want       Window
	}{
		{name: "first page", page: 1, size: 5, want: Window{Page: 1, Size: 5, Offset: 0}},
		{name: "third page", page: 3, size: 20, want: Window{Page: 3, Size: 20, Offset: 40}},
		{name: "zero page", page: 0, size: 5, want: Window{Page: 1, Size: 5, Offset: 0}},
		{name: "negative size", page: 2, size: -1, want: Window{Page: 2, Size: DefaultPageSize, Offset: 10}},
		{name: "oversized", page: 1, size: 1000, want: Window{Page: 1, Size: DefaultPageSize, Offset: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Paginate(tt.page, tt.size))
		})
	}
}

func TestLimit(t *testing.T) {
	assert.Equal(t, 0, Limit(0))
	assert.Equal(t, 0, Limit(-3))
	assert.Equal(t, 7, Limit(7))
	assert.Equal(t, MaxPageSize, Limit(5000))
}
