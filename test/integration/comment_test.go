package integration_test

import (
	"net/http"
	"testing"

	"carpinteria_backend/test/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientComment_FansOutToAdmins(t *testing.T) {
	ts := helpers.NewTestServer(t)
	admins := make([]string, 3)
	for i := range admins {
		admins[i], _ = helpers.CreateAndLoginAdmin(t, ts)
	}
	client, _ := helpers.CreateAndLoginClient(t, ts)
	quoteID := helpers.CreateQuoteViaAPI(t, ts, client, "Armario de tres puertas")

	res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/quotes/"+quoteID+"/messages", client, map[string]string{
		"text": "¿Pueden usar tiradores negros?",
	})
	require.Equal(t, http.StatusCreated, res.StatusCode, body)
	assert.Contains(t, body, `"notifications_created":3`)

	for _, token := range admins {
		_, body := ts.SendRequest(t, http.MethodGet, "/api/v1/notifications?type=new_comment", token, nil)
		var list notificationList
		helpers.DecodeJSON(t, body, &list)
		assert.Len(t, list.Notifications, 1)
	}
}

func TestAdminComment_NotifiesOwner(t *testing.T) {
	ts := helpers.NewTestServer(t)
	admin, _ := helpers.CreateAndLoginAdmin(t, ts)
	client, _ := helpers.CreateAndLoginClient(t, ts)
	quoteID := helpers.CreateQuoteViaAPI(t, ts, client, "Mesa de centro")

	res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/quotes/"+quoteID+"/messages", admin, map[string]string{
		"text": "Sí, tenemos tiradores negros mate.",
	})
	require.Equal(t, http.StatusCreated, res.StatusCode, body)
	assert.Contains(t, body, `"notifications_created":1`)

	_, body = ts.SendRequest(t, http.MethodGet, "/api/v1/notifications?type=new_comment", client, nil)
	var list notificationList
	helpers.DecodeJSON(t, body, &list)
	require.Len(t, list.Notifications, 1)
	assert.Equal(t, quoteID, list.Notifications[0].QuoteRequestID)

	_, body = ts.SendRequest(t, http.MethodGet, "/api/v1/quotes/"+quoteID+"/messages", client, nil)
	assert.Contains(t, body, "tiradores negros mate")
}

func TestComment_Preconditions(t *testing.T) {
	ts := helpers.NewTestServer(t)
	owner, _ := helpers.CreateAndLoginClient(t, ts)
	stranger, _ := helpers.CreateAndLoginClient(t, ts)
	quoteID := helpers.CreateQuoteViaAPI(t, ts, owner, "Ventana de madera")

	res, _ := ts.SendRequest(t, http.MethodPost, "/api/v1/quotes/"+quoteID+"/messages", owner, map[string]string{"text": "   "})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res, _ = ts.SendRequest(t, http.MethodPost, "/api/v1/quotes/"+quoteID+"/messages", stranger, map[string]string{"text": "Hola"})
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	res, _ = ts.SendRequest(t, http.MethodGet, "/api/v1/quotes/"+quoteID+"/messages", stranger, nil)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
}
