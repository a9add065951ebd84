package order_repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pointorder/internal/core/apperror"
)

func TestParseOrderBy(t *testing.T) {
	tests := []struct {
		name    string
		orderBy string
		want    string
	}{
		{"empty defaults to order date", "", "order_date DESC"},
		{"plain field ascends", "code", "code ASC"},
		{"plus prefix ascends", "+created_at", "created_at ASC"},
		{"minus prefix descends", "-total_amount", "total_amount DESC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseOrderBy(tt.orderBy)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseOrderBy_RejectsUnknownFields(t *testing.T) {
	tests := []struct {
		name    string
		orderBy string
	}{
		{"unknown column", "secret_column"},
		{"injection attempt", "code; DROP TABLE pto_orders--"},
		{"expression", "1=1"},
		{"bare minus", "-"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseOrderBy(tt.orderBy)
			require.Error(t, err)
			assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
		})
	}
}
