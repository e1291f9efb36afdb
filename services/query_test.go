package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueryNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   Query
		want Query
	}{
		{"defaults", Query{}, Query{Page: 1, PageSize: 10, OrderDirection: "desc"}},
		{"caps page size", Query{Page: 3, PageSize: 500}, Query{Page: 3, PageSize: 100, OrderDirection: "desc"}},
		{"asc", Query{OrderDirection: " ASC "}, Query{Page: 1, PageSize: 10, OrderDirection: "asc"}},
		{"unknown direction", Query{OrderDirection: "sideways"}, Query{Page: 1, PageSize: 10, OrderDirection: "desc"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.normalize())
		})
	}
}

func TestQuerySkip(t *testing.T) {
	assert.Equal(t, 0, Query{}.Skip())
	assert.Equal(t, 10, Query{Page: 2, PageSize: 10}.Skip())
	assert.Equal(t, 40, Query{Page: 3, PageSize: 20}.Skip())
}

func TestLikePatternEscapes(t *testing.T) {
	assert.Equal(t, `%abc%`, likePattern("AbC"))
	assert.Equal(t, `%50\%\_off\\%`, likePattern(`50%_off\`))
}

func TestBadRequestKeepsInnerMessage(t *testing.T) {
	err := badRequest(validationError("User is not owner"), "Create room failed")

	assert.ErrorIs(t, err, ErrBadRequest)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "User is not owner", err.(*Error).Message)
	assert.Equal(t, "Create room failed", badRequest(nil, "Create room failed").(*Error).Message)
}
