package handlers

import (
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sallyfoods/orderdesk/internal/models"
	"github.com/sallyfoods/orderdesk/internal/mykafka"
	"github.com/sallyfoods/orderdesk/internal/store"
)

func newCustomerHandler(env *testEnv) *CustomerHandler {
	return &CustomerHandler{
		Store:    store.NewCustomerStore(env.DB),
		Producer: mykafka.NewProducer(nil),
	}
}

func TestCustomerCreateRedirects(t *testing.T) {
	env := newTestEnv(t)
	h := newCustomerHandler(env)

	c, rec := env.postForm("/customers", url.Values{
		"name":     {"Wuhan Deli"},
		"cus_code": {"C001"},
	})
	require.NoError(t, h.Create(c))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/customers?status=created", rec.Header().Get("Location"))

	var customer models.Customer
	require.NoError(t, env.DB.First(&customer).Error)
	assert.Equal(t, "Wuhan Deli", customer.Name)
	assert.True(t, customer.IsActive)
}

func TestCustomerCreateValidation(t *testing.T) {
	env := newTestEnv(t)
	h := newCustomerHandler(env)

	c, rec := env.postForm("/customers", url.Values{
		"name":     {"   "},
		"cus_code": {"C001"},
	})
	require.NoError(t, h.Create(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "required")

	var count int64
	require.NoError(t, env.DB.Model(&models.Customer{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCustomerListRendersRows(t *testing.T) {
	env := newTestEnv(t)
	h := newCustomerHandler(env)
	env.seedCustomer(t, "Wuhan Deli", "C001")
	env.seedCustomer(t, "Golden Bakery", "C002")

	c, rec := env.get("/customers")
	require.NoError(t, h.List(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Wuhan Deli")
	assert.Contains(t, rec.Body.String(), "Golden Bakery")
}

func TestCustomerUpdateRedirects(t *testing.T) {
	env := newTestEnv(t)
	h := newCustomerHandler(env)
	customer := env.seedCustomer(t, "Wuhan Deli", "C001")

	c, rec := env.postForm(fmt.Sprintf("/customers/%d", customer.ID), url.Values{
		"name":     {"Wuhan Delicatessen"},
		"cus_code": {"C001"},
	})
	withParamID(c, fmt.Sprint(customer.ID))
	require.NoError(t, h.Update(c))

	assert.Equal(t, http.StatusSeeOther, rec.Code)

	var got models.Customer
	require.NoError(t, env.DB.First(&got, customer.ID).Error)
	assert.Equal(t, "Wuhan Delicatessen", got.Name)
}

func TestCustomerDeleteIsSoft(t *testing.T) {
	env := newTestEnv(t)
	h := newCustomerHandler(env)
	customer := env.seedCustomer(t, "Wuhan Deli", "C001")

	c, rec := env.postForm(fmt.Sprintf("/customers/%d/delete", customer.ID), url.Values{})
	withParamID(c, fmt.Sprint(customer.ID))
	require.NoError(t, h.Delete(c))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/customers?status=deleted", rec.Header().Get("Location"))

	var got models.Customer
	require.NoError(t, env.DB.First(&got, customer.ID).Error)
	assert.False(t, got.IsActive)
}

func TestCustomerEditUnknownIDRenders404(t *testing.T) {
	env := newTestEnv(t)
	h := newCustomerHandler(env)

	c, rec := env.get("/customers/42/edit")
	withParamID(c, "42")
	require.NoError(t, h.Edit(c))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "not found")
}
