package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/monashmerchant/shop/internal/models"
)

func TestEnabled(t *testing.T) {
	t.Parallel()

	var nilSvc *Service
	assert.False(t, nilSvc.Enabled())

	assert.False(t, (&Service{}).Enabled())
}

func TestSearch_DisabledReturnsSentinel(t *testing.T) {
	t.Parallel()
	var s *Service

	_, _, err := s.Search(context.Background(), "milk", 0, 10)
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestIndexing_DisabledIsNoOp(t *testing.T) {
	t.Parallel()
	var s *Service

	assert.NoError(t, s.IndexProduct(context.Background(), models.Product{ID: "P001"}))
	assert.NoError(t, s.IndexAll(context.Background(), []models.Product{{ID: "P001"}}))
}
