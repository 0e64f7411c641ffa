package handlers

import (
	"encoding/json"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStudentHandler_RequiresStudentSession(t *testing.T) {
	env := setupHandlerEnv(t)
	handler := env.auth.RequireStudent(env.studentHandler.Balance)

	t.Run("no cookie", func(t *testing.T) {
		ctx := setupTestContext("GET", "/api/student/balance", nil)
		handler(ctx)
		assert.Equal(t, 401, ctx.Response.StatusCode())
	})

	t.Run("teacher session", func(t *testing.T) {
		teacher := env.createTeacher(t, "mr-lopez")
		token := env.teacherToken(t, teacher.ID)

		ctx := withToken(setupTestContext("GET", "/api/student/balance", nil), token)
		handler(ctx)
		assert.Equal(t, 403, ctx.Response.StatusCode())
	})
}

func TestStudentHandler_CartAndPurchaseFlow(t *testing.T) {
	env := setupHandlerEnv(t)
	teacher := env.createTeacher(t, "mr-lopez")
	student := env.createStudent(t, teacher.ID, "S-001", "Ada", "10.00")
	item := env.createItem(t, teacher.ID, "Notebook", "3.33")
	token := env.studentToken(t, student)

	addToCart := env.auth.RequireStudent(env.studentHandler.AddToCart)
	viewCart := env.auth.RequireStudent(env.studentHandler.ViewCart)
	purchase := env.auth.RequireStudent(env.studentHandler.Purchase)
	balance := env.auth.RequireStudent(env.studentHandler.Balance)

	t.Run("add to cart", func(t *testing.T) {
		body, _ := json.Marshal(addToCartRequest{ItemID: item.ID, Quantity: 3})
		ctx := withToken(setupTestContext("POST", "/api/student/cart", body), token)
		addToCart(ctx)
		require.Equal(t, 200, ctx.Response.StatusCode())
	})

	t.Run("cart view survives a new request", func(t *testing.T) {
		ctx := withToken(setupTestContext("GET", "/api/student/cart", nil), token)
		viewCart(ctx)
		require.Equal(t, 200, ctx.Response.StatusCode())

		var resp cartJSON
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
		require.Len(t, resp.Items, 1)
		assert.Equal(t, "Notebook", resp.Items[0].Name)
		assert.Equal(t, 3, resp.Items[0].Quantity)
		assert.InDelta(t, 9.99, resp.Total, 0.001)
	})

	t.Run("purchase", func(t *testing.T) {
		ctx := withToken(setupTestContext("POST", "/api/student/purchase", nil), token)
		purchase(ctx)
		require.Equal(t, 200, ctx.Response.StatusCode())

		var resp map[string]any
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
		assert.InDelta(t, 9.99, resp["total"].(float64), 0.001)
		assert.InDelta(t, 0.01, resp["new_balance"].(float64), 0.001)
	})

	t.Run("cart is empty afterwards", func(t *testing.T) {
		ctx := withToken(setupTestContext("POST", "/api/student/purchase", nil), token)
		purchase(ctx)
		assert.Equal(t, 400, ctx.Response.StatusCode())
	})

	t.Run("balance reflects the purchase", func(t *testing.T) {
		ctx := withToken(setupTestContext("GET", "/api/student/balance", nil), token)
		balance(ctx)
		require.Equal(t, 200, ctx.Response.StatusCode())

		var resp map[string]float64
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
		assert.InDelta(t, 0.01, resp["balance"], 0.001)
	})
}

func TestStudentHandler_CartUpdates(t *testing.T) {
	env := setupHandlerEnv(t)
	teacher := env.createTeacher(t, "mr-lopez")
	student := env.createStudent(t, teacher.ID, "S-001", "Ada", "10.00")
	item := env.createItem(t, teacher.ID, "Pencil", "1.25")
	token := env.studentToken(t, student)
	itemID := strconv.FormatInt(item.ID, 10)

	addToCart := env.auth.RequireStudent(env.studentHandler.AddToCart)
	updateCart := env.auth.RequireStudent(env.studentHandler.UpdateCartItem)
	removeCart := env.auth.RequireStudent(env.studentHandler.RemoveCartItem)
	viewCart := env.auth.RequireStudent(env.studentHandler.ViewCart)

	body, _ := json.Marshal(addToCartRequest{ItemID: item.ID, Quantity: 1})
	ctx := withToken(setupTestContext("POST", "/api/student/cart", body), token)
	addToCart(ctx)
	require.Equal(t, 200, ctx.Response.StatusCode())

	t.Run("update quantity", func(t *testing.T) {
		body, _ := json.Marshal(updateCartRequest{Quantity: 5})
		ctx := withToken(setupTestContext("PUT", "/api/student/cart/"+itemID, body), token)
		ctx.SetUserValue("item_id", itemID)
		updateCart(ctx)
		require.Equal(t, 200, ctx.Response.StatusCode())

		ctx = withToken(setupTestContext("GET", "/api/student/cart", nil), token)
		viewCart(ctx)
		var resp cartJSON
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
		require.Len(t, resp.Items, 1)
		assert.Equal(t, 5, resp.Items[0].Quantity)
	})

	t.Run("remove", func(t *testing.T) {
		ctx := withToken(setupTestContext("DELETE", "/api/student/cart/"+itemID, nil), token)
		ctx.SetUserValue("item_id", itemID)
		removeCart(ctx)
		require.Equal(t, 200, ctx.Response.StatusCode())

		// removing an item that is no longer there
		ctx = withToken(setupTestContext("DELETE", "/api/student/cart/"+itemID, nil), token)
		ctx.SetUserValue("item_id", itemID)
		removeCart(ctx)
		assert.Equal(t, 404, ctx.Response.StatusCode())
	})

	t.Run("default quantity is one", func(t *testing.T) {
		body, _ := json.Marshal(addToCartRequest{ItemID: item.ID})
		ctx := withToken(setupTestContext("POST", "/api/student/cart", body), token)
		addToCart(ctx)
		require.Equal(t, 200, ctx.Response.StatusCode())

		ctx = withToken(setupTestContext("GET", "/api/student/cart", nil), token)
		viewCart(ctx)
		var resp cartJSON
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
		require.Len(t, resp.Items, 1)
		assert.Equal(t, 1, resp.Items[0].Quantity)
	})
}
