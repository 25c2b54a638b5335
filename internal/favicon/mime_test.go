package favicon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInferType(t *testing.T) {
	tests := []struct {
		name     string
		explicit string
		href     string
		want     string
	}{
		{"jpg normalized", "", "a/b.jpg", "image/jpeg"},
		{"no extension", "", "a/b", "image/x-icon"},
		{"ico", "", "http://a.com/favicon.ico", "image/x-icon"},
		{"png verbatim", "", "http://a.com/x.png", "image/png"},
		{"svg verbatim", "", "http://a.com/x.svg", "image/svg"},
		{"query ignored", "", "http://a.com/x.png?v=3", "image/png"},
		{"bare host", "", "http://a.com", "image/x-icon"},
		{"explicit wins", "image/svg+xml", "a/b.ico", "image/svg+xml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InferType(tt.explicit, tt.href))
		})
	}
}
