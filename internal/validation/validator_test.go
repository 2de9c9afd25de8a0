package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/packzen/packzen-client/internal/domain"
	domainerrors "github.com/packzen/packzen-client/internal/errors"
)

func TestValidate_NewItemInput(t *testing.T) {
	v := New()

	assert.NoError(t, v.Validate(domain.NewItemInput{Name: "Socks", Quantity: 1}))

	err := v.Validate(domain.NewItemInput{Name: "", Quantity: 1})
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))

	err = v.Validate(domain.NewItemInput{Name: "Socks", Quantity: 1000})
	require.Error(t, err)
}

func TestValidate_FieldNamesUseJSONTags(t *testing.T) {
	v := New()

	err := v.Validate(domain.NewItemInput{Quantity: 1})
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.True(t, domainerrors.As(err, &domainErr))

	details, ok := domainErr.Details.(map[string]string)
	require.True(t, ok)
	assert.Contains(t, details, "name")
	assert.Equal(t, "is required", details["name"])
}
