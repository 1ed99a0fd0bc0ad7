package selector

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/worktrunk/worktrunk/internal/models"
)

func TestUnavailablePickAlwaysErrors(t *testing.T) {
	item, err := (Unavailable{}).Pick(context.Background(), []models.ListItem{{Branch: "main"}})
	assert.Nil(t, item)
	assert.Error(t, err)
}
